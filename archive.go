package amd

import (
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// ArchiveExtension is the file extension of result archives.
const ArchiveExtension = ".msgpack.zst"

// Archive is the serialized form of mission results. Every condition is stored row major.
type Archive struct {
	Mission  string           `msgpack:"mission"`
	RunID    string           `msgpack:"run_id"`
	Epoch    time.Time        `msgpack:"epoch"`
	Segments []ArchiveSegment `msgpack:"segments"`
}

// ArchiveSegment is one segment of an archive.
type ArchiveSegment struct {
	Tag        string                   `msgpack:"tag"`
	Kind       string                   `msgpack:"kind"`
	Config     string                   `msgpack:"config"`
	Duration   float64                  `msgpack:"duration"`
	Distance   float64                  `msgpack:"distance"`
	Iterations int                      `msgpack:"iterations"`
	Residual   float64                  `msgpack:"residual_norm"`
	Conditions map[string]ArchiveMatrix `msgpack:"conditions"`
	Unknowns   map[string][]float64     `msgpack:"unknowns"`
}

// ArchiveMatrix is a dense row major matrix.
type ArchiveMatrix struct {
	Rows int       `msgpack:"r"`
	Cols int       `msgpack:"c"`
	Data []float64 `msgpack:"d"`
}

// NewArchive returns the archive of some results.
func NewArchive(res *Results) *Archive {
	a := &Archive{Mission: res.Mission, RunID: res.RunID.String(), Epoch: res.Epoch.UTC()}
	for _, sr := range res.Segments() {
		seg := ArchiveSegment{
			Tag:        sr.Tag,
			Kind:       sr.Kind.String(),
			Config:     sr.Config,
			Duration:   sr.Duration,
			Distance:   sr.Distance,
			Iterations: sr.Stats.Iterations,
			Residual:   sr.Stats.ResidualNorm,
			Conditions: make(map[string]ArchiveMatrix),
			Unknowns:   sr.Unknowns,
		}
		for _, name := range sr.Conditions.Names() {
			m, _ := sr.Conditions.Get(name)
			r, c := m.Dims()
			data := make([]float64, 0, r*c)
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					data = append(data, m.At(i, j))
				}
			}
			seg.Conditions[name] = ArchiveMatrix{r, c, data}
		}
		a.Segments = append(a.Segments, seg)
	}
	return a
}

// WriteArchive encodes the results as zstd compressed msgpack.
func WriteArchive(w io.Writer, res *Results) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(zw).Encode(NewArchive(res)); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// ReadArchive decodes an archive written by WriteArchive.
func ReadArchive(r io.Reader) (*Archive, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	var a Archive
	if err := msgpack.NewDecoder(zr).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Segment returns the archived segment with this tag.
func (a *Archive) Segment(tag string) (*ArchiveSegment, bool) {
	for i := range a.Segments {
		if a.Segments[i].Tag == tag {
			return &a.Segments[i], true
		}
	}
	return nil, false
}

// Column returns one column of an archived condition.
func (s *ArchiveSegment) Column(name string, col int) ([]float64, bool) {
	m, ok := s.Conditions[name]
	if !ok || col >= m.Cols {
		return nil, false
	}
	out := make([]float64, m.Rows)
	for i := range out {
		out[i] = m.Data[i*m.Cols+col]
	}
	return out, true
}
