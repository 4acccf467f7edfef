package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/ledpanel/internal/fsutil"
	"github.com/banshee-data/ledpanel/internal/geom"
	"github.com/banshee-data/ledpanel/internal/panel"
	"github.com/banshee-data/ledpanel/internal/timeutil"
	"github.com/banshee-data/ledpanel/internal/version"
)

// Panel is the exported layout of one panel.
type Panel struct {
	Name string `json:"name"`
	// Matrix maps pixel (col, row, 0) to world space, row-major.
	Matrix      [4][4]float64     `json:"matrix"`
	Pixels      [][2]int          `json:"pixels"`
	Vertices    [][3]float64      `json:"vertices"`
	Spacing     [3]float64        `json:"spacing"`
	Translation [3]float64        `json:"translation"`
	Yaw         float64           `json:"yaw"`
	Pitch       float64           `json:"pitch"`
	Roll        float64           `json:"roll"`
	Overridden  bool              `json:"overridden,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Failure records a panel that could not be laid out.
type Failure struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// Document is the output of one run.
type Document struct {
	RunID       string    `json:"run_id"`
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Panels      []Panel   `json:"panels"`
	Failures    []Failure `json:"failures,omitempty"`
}

// NewPanel converts a panel result.
func NewPanel(res panel.Result) Panel {
	p := Panel{
		Name:       res.Name,
		Matrix:     res.Transform.Matrix.Rows(),
		Pixels:     res.Lights.Pairs(),
		Vertices:   make([][3]float64, len(res.PixelVertices)),
		Spacing:    res.Geometry.Spacing.Triple(),
		Yaw:        res.Pose.Yaw,
		Pitch:      res.Pose.Pitch,
		Roll:       res.Pose.Roll,
		Overridden: res.Overridden,
		Metadata:   res.Metadata,
	}
	t := res.Pose.Translation
	p.Translation = [3]float64{t.X, t.Y, t.Z}
	for i, v := range res.PixelVertices {
		p.Vertices[i] = [3]float64{v.X, v.Y, v.Z}
	}
	return p
}

// NewFailure describes a failed panel. Geometry errors report their kind.
func NewFailure(name string, err error) Failure {
	return Failure{Name: name, Kind: Kind(err), Error: err.Error()}
}

// Kind classifies err for the failure list.
func Kind(err error) string {
	var gerr *geom.GeometryError
	switch {
	case errors.As(err, &gerr):
		return gerr.Kind.String()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// NewDocument collects the outcomes of a run in order.
func NewDocument(outcomes []panel.Outcome, clock timeutil.Clock) *Document {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	doc := &Document{
		RunID:       uuid.New().String(),
		Version:     version.Version,
		GeneratedAt: clock.Now(),
		Panels:      make([]Panel, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		if o.Err != nil {
			doc.Failures = append(doc.Failures, NewFailure(o.Name, o.Err))
			continue
		}
		doc.Panels = append(doc.Panels, NewPanel(o.Result))
	}
	return doc
}

// Encode writes the document as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// Write encodes the document to path.
func (d *Document) Write(fsys fsutil.FileSystem, path string) error {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return err
	}
	return fsutil.WriteFileAll(fsys, path, buf.Bytes())
}

// Read decodes a document previously written by Write.
func Read(fsys fsutil.FileSystem, path string) (*Document, error) {
	data, err := fsutil.ReadLimited(fsys, path, 64*1024*1024)
	if err != nil {
		return nil, err
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}
	return &d, nil
}
