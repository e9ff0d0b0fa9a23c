// Package scenario runs scripted mixer playback read from YAML files. A
// scenario declares a node tree, the clips and actions to play on it and a
// list of steps fired at given ticks; Run advances the mixer at a fixed rate
// and prints the watched properties after every tick.
package scenario

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phanxgames/animix"
	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML structure of a scenario file.
type Config struct {
	DT      float64        `yaml:"dt" validate:"gt=0"`
	Ticks   int            `yaml:"ticks" validate:"gte=1"`
	Watch   []string       `yaml:"watch" validate:"dive,required"`
	Nodes   []NodeConfig   `yaml:"nodes" validate:"dive"`
	Clips   []ClipConfig   `yaml:"clips" validate:"required,min=1,dive"`
	Actions []ActionConfig `yaml:"actions" validate:"required,min=1,dive"`
	Steps   []Step         `yaml:"steps" validate:"dive"`
}

// NodeConfig adds a node under Parent, a dotted path from the root. An empty
// Parent means the root itself.
type NodeConfig struct {
	Name     string               `yaml:"name" validate:"required"`
	Parent   string               `yaml:"parent"`
	X        float64              `yaml:"x"`
	Y        float64              `yaml:"y"`
	Rotation float64              `yaml:"rotation"`
	Alpha    *float64             `yaml:"alpha" validate:"omitempty,gte=0,lte=1"`
	Channels map[string][]float64 `yaml:"channels"`
}

// ClipConfig names a clip read from File, relative to the scenario, or given
// inline as Data.
type ClipConfig struct {
	Name string           `yaml:"name" validate:"required"`
	File string           `yaml:"file" validate:"required_without=Data"`
	Data *animix.ClipData `yaml:"data"`
}

// ActionConfig declares a named action playing Clip on the node at Root.
type ActionConfig struct {
	Name        string   `yaml:"name" validate:"required"`
	Clip        string   `yaml:"clip" validate:"required"`
	Root        string   `yaml:"root"`
	Loop        string   `yaml:"loop" validate:"omitempty,oneof=repeat once pingpong"`
	Repetitions *int     `yaml:"repetitions"`
	Weight      *float64 `yaml:"weight" validate:"omitempty,gte=0"`
	TimeScale   *float64 `yaml:"timeScale"`
	Clamp       bool     `yaml:"clamp"`
}

// Step is a single operation applied to an action before the mixer advances
// at Tick. Target names the other action of a crossFade; Value carries the
// new weight or time scale.
type Step struct {
	Tick     int     `yaml:"tick" validate:"gte=0"`
	Action   string  `yaml:"action" validate:"required"`
	Op       string  `yaml:"op" validate:"required,oneof=play stop pause unpause reset fadeIn fadeOut crossFade weight timeScale"`
	Target   string  `yaml:"target" validate:"required_if=Op crossFade"`
	Duration float64 `yaml:"duration" validate:"gte=0"`
	Value    float64 `yaml:"value"`
	Warp     bool    `yaml:"warp"`
}

// watched is a resolved watch path.
type watched struct {
	path string
	acc  animix.Accessor
	buf  []float64
}

// Runner sequences scenario steps across mixer ticks.
type Runner struct {
	dt      float64
	ticks   int
	root    *animix.Node
	mixer   *animix.Mixer
	actions map[string]*animix.Action
	names   map[*animix.Action]string
	watch   []watched
	steps   []Step
	cursor  int
	tick    int
	events  []string
}

// Load parses a YAML scenario. Clip files are resolved relative to baseDir.
func Load(data []byte, baseDir string) (*Runner, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return New(cfg, baseDir)
}

// LoadFile reads and parses the scenario at path.
func LoadFile(path string) (*Runner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Load(data, filepath.Dir(path))
}

// ReadClip loads a clip file, choosing the YAML or JSON loader by extension.
func ReadClip(path string) (*animix.Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clip: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return animix.LoadClipYAML(data)
	default:
		return animix.LoadClip(data)
	}
}

// New validates cfg and builds the node tree, clips and actions it declares.
func New(cfg Config, baseDir string) (*Runner, error) {
	if err := animix.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	root := animix.NewNode("root")
	for _, nc := range cfg.Nodes {
		parent, err := findNode(root, nc.Parent)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nc.Name, err)
		}
		n := animix.NewNode(nc.Name)
		n.X, n.Y, n.Rotation = nc.X, nc.Y, nc.Rotation
		if nc.Alpha != nil {
			n.Alpha = *nc.Alpha
		}
		for name, v := range nc.Channels {
			n.SetChannel(name, v)
		}
		parent.AddChild(n)
	}

	clips := make(map[string]*animix.Clip, len(cfg.Clips))
	for _, cc := range cfg.Clips {
		if _, dup := clips[cc.Name]; dup {
			return nil, fmt.Errorf("duplicate clip %q", cc.Name)
		}
		var (
			clip *animix.Clip
			err  error
		)
		if cc.Data != nil {
			clip, err = animix.NewClipFromData(*cc.Data)
		} else {
			file := cc.File
			if !filepath.IsAbs(file) {
				file = filepath.Join(baseDir, file)
			}
			clip, err = ReadClip(file)
		}
		if err != nil {
			return nil, fmt.Errorf("clip %q: %w", cc.Name, err)
		}
		clips[cc.Name] = clip
	}

	r := &Runner{
		dt:      cfg.DT,
		ticks:   cfg.Ticks,
		root:    root,
		mixer:   animix.NewMixer(root),
		actions: make(map[string]*animix.Action, len(cfg.Actions)),
		names:   make(map[*animix.Action]string, len(cfg.Actions)),
	}
	r.mixer.SetEventSink(animix.EventSinkFunc(r.record))

	for _, ac := range cfg.Actions {
		if err := r.addAction(ac, clips); err != nil {
			return nil, fmt.Errorf("action %q: %w", ac.Name, err)
		}
	}

	for _, path := range cfg.Watch {
		acc, err := root.ResolveProperty(animix.ParsePath(path))
		if err != nil {
			return nil, fmt.Errorf("watch %q: %w", path, err)
		}
		r.watch = append(r.watch, watched{path: path, acc: acc, buf: make([]float64, acc.Stride())})
	}

	for i, st := range cfg.Steps {
		if st.Tick >= cfg.Ticks {
			return nil, fmt.Errorf("step %d: tick %d is past the last tick %d", i, st.Tick, cfg.Ticks-1)
		}
		for _, name := range []string{st.Action, st.Target} {
			if _, ok := r.actions[name]; name != "" && !ok {
				return nil, fmt.Errorf("step %d: unknown action %q", i, name)
			}
		}
	}
	r.steps = append(r.steps, cfg.Steps...)
	sort.SliceStable(r.steps, func(i, j int) bool { return r.steps[i].Tick < r.steps[j].Tick })
	return r, nil
}

func (r *Runner) addAction(ac ActionConfig, clips map[string]*animix.Clip) error {
	if _, dup := r.actions[ac.Name]; dup {
		return fmt.Errorf("duplicate action")
	}
	clip, ok := clips[ac.Clip]
	if !ok {
		return fmt.Errorf("unknown clip %q", ac.Clip)
	}
	target, err := findNode(r.root, ac.Root)
	if err != nil {
		return err
	}

	a := r.mixer.Action(clip, target)
	if ac.Loop != "" || ac.Repetitions != nil {
		mode := animix.LoopRepeat
		if ac.Loop != "" {
			if mode, err = animix.ParseLoopMode(ac.Loop); err != nil {
				return err
			}
		}
		reps := animix.Infinite
		if ac.Repetitions != nil {
			reps = *ac.Repetitions
		}
		if err := a.SetLoop(mode, reps); err != nil {
			return err
		}
	}
	if ac.Weight != nil {
		if err := a.SetEffectiveWeight(*ac.Weight); err != nil {
			return err
		}
	}
	if ac.TimeScale != nil {
		if err := a.SetEffectiveTimeScale(*ac.TimeScale); err != nil {
			return err
		}
	}
	a.ClampWhenFinished = ac.Clamp

	r.actions[ac.Name] = a
	r.names[a] = ac.Name
	return nil
}

// findNode walks a dotted path of child names from root.
func findNode(root *animix.Node, path string) (*animix.Node, error) {
	n := root
	for _, name := range animix.ParsePath(path) {
		child := n.FindChild(name)
		if child == nil {
			return nil, fmt.Errorf("no node %q under %q", name, n.Name)
		}
		n = child
	}
	return n, nil
}

// Mixer returns the mixer the scenario drives.
func (r *Runner) Mixer() *animix.Mixer { return r.mixer }

// Root returns the root node of the scenario's tree.
func (r *Runner) Root() *animix.Node { return r.root }

// Action returns the action declared under name, or nil.
func (r *Runner) Action(name string) *animix.Action { return r.actions[name] }

// Tick returns the number of ticks run so far.
func (r *Runner) Tick() int { return r.tick }

// Done reports whether every tick of the scenario has run.
func (r *Runner) Done() bool { return r.tick >= r.ticks }

// Step fires the steps due at the current tick, then advances the mixer by
// one dt. It is a no-op once Done.
func (r *Runner) Step() error {
	if r.Done() {
		return nil
	}
	for r.cursor < len(r.steps) && r.steps[r.cursor].Tick == r.tick {
		st := r.steps[r.cursor]
		r.cursor++
		if err := r.apply(st); err != nil {
			return fmt.Errorf("tick %d: %s %s: %w", st.Tick, st.Op, st.Action, err)
		}
	}
	r.mixer.Advance(r.dt)
	r.tick++
	return nil
}

func (r *Runner) apply(st Step) error {
	a := r.actions[st.Action]
	switch st.Op {
	case "play":
		a.Play()
	case "stop":
		a.Stop()
	case "pause":
		a.Pause()
	case "unpause":
		a.Unpause()
	case "reset":
		a.Reset()
	case "fadeIn":
		return a.FadeIn(st.Duration)
	case "fadeOut":
		return a.FadeOut(st.Duration)
	case "crossFade":
		to := r.actions[st.Target]
		if !to.IsScheduled() {
			to.Reset()
			to.Play()
		}
		return a.CrossFadeTo(to, st.Duration, st.Warp)
	case "weight":
		return a.SetEffectiveWeight(st.Value)
	case "timeScale":
		return a.SetEffectiveTimeScale(st.Value)
	}
	return nil
}

func (r *Runner) record(e animix.Event) {
	line := e.Type.String()
	if name, ok := r.names[e.Action]; ok {
		line += " " + name
	}
	switch e.Type {
	case animix.EventLoop:
		line += fmt.Sprintf(" loops=%d", e.Loops)
	case animix.EventBindingError:
		line += fmt.Sprintf(" %s: %v", e.Path, e.Err)
	}
	r.events = append(r.events, line)
}

// Run steps the scenario to completion, writing one line per tick with the
// mixer time and every watched property, followed by the events that tick
// produced.
func (r *Runner) Run(w io.Writer) error {
	var sb strings.Builder
	for !r.Done() {
		r.events = r.events[:0]
		if err := r.Step(); err != nil {
			return err
		}

		sb.Reset()
		fmt.Fprintf(&sb, "%4d t=%.4f", r.tick, r.mixer.Time())
		for i := range r.watch {
			wv := &r.watch[i]
			sb.WriteByte(' ')
			sb.WriteString(wv.path)
			sb.WriteByte('=')
			if err := wv.acc.Get(wv.buf); err != nil {
				sb.WriteString("?")
				continue
			}
			writeValues(&sb, wv.buf)
		}
		sb.WriteByte('\n')
		for _, ev := range r.events {
			sb.WriteString("     ")
			sb.WriteString(ev)
			sb.WriteByte('\n')
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

func writeValues(sb *strings.Builder, v []float64) {
	if len(v) == 1 {
		fmt.Fprintf(sb, "%.4f", v[0])
		return
	}
	sb.WriteByte('(')
	for i, x := range v {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%.4f", x)
	}
	sb.WriteByte(')')
}
