package encoder

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ExperienceCollector accumulates self-play training samples (state tensor, visit-count
// tensor, and eventual game reward) for one episode at a time, then serializes the
// accumulated collection to a directory as a sidecar pair per field: a small JSON
// descriptor naming the dtype/shape/strides, and a raw little-endian .dat file holding
// the flattened values. This mirrors the array-plus-descriptor layout a training
// pipeline outside this module expects, so nothing here parses or consumes the format,
// only writes it.
type ExperienceCollector struct {
	states      []Tensor
	visitCounts []Tensor
	rewards     []float32

	episodeStates      []Tensor
	episodeVisitCounts []Tensor
}

// NewExperienceCollector returns an empty collector.
func NewExperienceCollector() *ExperienceCollector {
	return &ExperienceCollector{}
}

// BeginEpisode discards any in-progress (uncompleted) episode and starts a new one.
func (c *ExperienceCollector) BeginEpisode() {
	c.episodeStates = nil
	c.episodeVisitCounts = nil
}

// RecordDecision appends one move's state and visit-count tensors to the episode in
// progress.
func (c *ExperienceCollector) RecordDecision(state, visitCounts Tensor) {
	c.episodeStates = append(c.episodeStates, state)
	c.episodeVisitCounts = append(c.episodeVisitCounts, visitCounts)
}

// CompleteEpisode closes out the in-progress episode, assigning reward to every
// decision recorded in it.
func (c *ExperienceCollector) CompleteEpisode(reward float32) {
	c.states = append(c.states, c.episodeStates...)
	c.visitCounts = append(c.visitCounts, c.episodeVisitCounts...)
	for range c.episodeStates {
		c.rewards = append(c.rewards, reward)
	}
	c.episodeStates = nil
	c.episodeVisitCounts = nil
}

// Len returns the number of recorded decisions across all completed episodes.
func (c *ExperienceCollector) Len() int {
	return len(c.states)
}

// tensorDescriptor is the JSON sidecar written alongside each .dat file.
type tensorDescriptor struct {
	Data    string `json:"data"`
	Dtype   string `json:"dtype"`
	Shape   []int  `json:"shape"`
	Strides []int  `json:"strides"`
}

// Serialize writes the collected states, visit counts, and rewards into directory,
// creating it if necessary, with filenames of the form "<field><label>.json"/".dat".
// It is a no-op if no decisions have been recorded.
func (c *ExperienceCollector) Serialize(directory, label string) error {
	if len(c.states) == 0 {
		return nil
	}

	if info, err := os.Stat(directory); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.Mkdir(directory, 0o755); err != nil {
			return err
		}
	} else if !info.IsDir() {
		return fmt.Errorf("encoder: path exists and is not a directory: %v", directory)
	}

	if err := serializeTensors(c.states, directory, "states"+label); err != nil {
		return fmt.Errorf("encoder: serializing states: %w", err)
	}
	if err := serializeTensors(c.visitCounts, directory, "visit_counts"+label); err != nil {
		return fmt.Errorf("encoder: serializing visit_counts: %w", err)
	}
	if err := serializeVector(c.rewards, directory, "rewards"+label); err != nil {
		return fmt.Errorf("encoder: serializing rewards: %w", err)
	}
	return nil
}

// serializeTensors writes a collection of equally-shaped tensors concatenated along a
// new leading axis: n tensors of shape (shape...) become one array of shape
// (n, shape...).
func serializeTensors(tensors []Tensor, directory, name string) error {
	if len(tensors) == 0 {
		return nil
	}

	shape := append([]int{len(tensors)}, tensors[0].Shape...)
	strides := append([]int{len(tensors[0].Data)}, tensors[0].Strides...)
	if err := writeDescriptor(directory, name, "float32", shape, strides); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(directory, name+".dat"))
	if err != nil {
		return err
	}
	defer f.Close()

	for _, t := range tensors {
		if err := binary.Write(f, binary.LittleEndian, t.Data); err != nil {
			return err
		}
	}
	return nil
}

func serializeVector(vec []float32, directory, name string) error {
	if len(vec) == 0 {
		return nil
	}

	if err := writeDescriptor(directory, name, "float32", []int{len(vec)}, []int{1}); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(directory, name+".dat"))
	if err != nil {
		return err
	}
	defer f.Close()

	return binary.Write(f, binary.LittleEndian, vec)
}

func writeDescriptor(directory, name, dtype string, shape, strides []int) error {
	desc := tensorDescriptor{Data: name + ".dat", Dtype: dtype, Shape: shape, Strides: strides}
	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(directory, name+".json"), data, 0o644)
}

// VisitCountTensor turns a move -> visit count map into a dense (73,8,8) tensor matching
// PolicyShape, for recording alongside a state tensor.
func VisitCountTensor(counts map[Coord]int) Tensor {
	t := NewTensor(PolicyShape[0], PolicyShape[1], PolicyShape[2])
	for coord, n := range counts {
		t.Set(float32(n), coord.Plane, coord.Rank, coord.File)
	}
	return t
}
