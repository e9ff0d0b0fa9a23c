package animix

import "strconv"

// nodeProperty describes one built-in animatable property of a Node.
// Properties without components have stride 1.
type nodeProperty struct {
	components []string
	fields     func(n *Node) [4]*float64
}

func (p nodeProperty) stride() int {
	if len(p.components) == 0 {
		return 1
	}
	return len(p.components)
}

var (
	componentsXY   = []string{"x", "y"}
	componentsRGBA = []string{"r", "g", "b", "a"}
)

var nodeProperties = map[string]nodeProperty{
	"x":        {fields: func(n *Node) [4]*float64 { return [4]*float64{&n.X} }},
	"y":        {fields: func(n *Node) [4]*float64 { return [4]*float64{&n.Y} }},
	"scaleX":   {fields: func(n *Node) [4]*float64 { return [4]*float64{&n.ScaleX} }},
	"scaleY":   {fields: func(n *Node) [4]*float64 { return [4]*float64{&n.ScaleY} }},
	"rotation": {fields: func(n *Node) [4]*float64 { return [4]*float64{&n.Rotation} }},
	"skewX":    {fields: func(n *Node) [4]*float64 { return [4]*float64{&n.SkewX} }},
	"skewY":    {fields: func(n *Node) [4]*float64 { return [4]*float64{&n.SkewY} }},
	"pivotX":   {fields: func(n *Node) [4]*float64 { return [4]*float64{&n.PivotX} }},
	"pivotY":   {fields: func(n *Node) [4]*float64 { return [4]*float64{&n.PivotY} }},
	"alpha":    {fields: func(n *Node) [4]*float64 { return [4]*float64{&n.Alpha} }},
	"position": {components: componentsXY, fields: func(n *Node) [4]*float64 { return [4]*float64{&n.X, &n.Y} }},
	"scale":    {components: componentsXY, fields: func(n *Node) [4]*float64 { return [4]*float64{&n.ScaleX, &n.ScaleY} }},
	"skew":     {components: componentsXY, fields: func(n *Node) [4]*float64 { return [4]*float64{&n.SkewX, &n.SkewY} }},
	"pivot":    {components: componentsXY, fields: func(n *Node) [4]*float64 { return [4]*float64{&n.PivotX, &n.PivotY} }},
	"color": {components: componentsRGBA, fields: func(n *Node) [4]*float64 {
		return [4]*float64{&n.Color.R, &n.Color.G, &n.Color.B, &n.Color.A}
	}},
}

// ResolveProperty implements Target.
//
// Leading segments name descendants (matched against Node.Name, first child
// wins), followed by a property and an optional component:
//
//	x                 rotation of this node
//	position          [x, y]
//	position.y        one component of a tuple property
//	arm.hand.color.a  alpha channel of a descendant's color
//	arm.morph.2       third value of the "morph" channel on child "arm"
//
// Built-in properties shadow channels of the same name, and both shadow
// children of the same name.
func (n *Node) ResolveProperty(path []string) (Accessor, error) {
	if len(path) == 0 {
		return nil, &BindingError{Err: ErrEmptyPath}
	}
	node := n
	for i, seg := range path {
		if node.disposed {
			return nil, &BindingError{Segment: seg, Err: ErrTargetDisposed}
		}
		rest := path[i+1:]
		if prop, ok := nodeProperties[seg]; ok {
			return node.resolveBuiltin(prop, rest)
		}
		if _, ok := node.channels[seg]; ok {
			return node.resolveChannel(seg, rest)
		}
		child := node.FindChild(seg)
		if child == nil {
			if len(rest) == 0 {
				return nil, &BindingError{Segment: seg, Err: ErrUnknownProperty}
			}
			return nil, &BindingError{Segment: seg, Err: ErrSegmentNotFound}
		}
		node = child
	}
	return nil, &BindingError{Segment: path[len(path)-1], Err: ErrUnknownProperty}
}

func (n *Node) resolveBuiltin(prop nodeProperty, rest []string) (Accessor, error) {
	fields := prop.fields(n)
	switch len(rest) {
	case 0:
		return &nodeAccessor{node: n, fields: fields, stride: prop.stride(), index: -1}, nil
	case 1:
		for i, c := range prop.components {
			if c == rest[0] {
				return &nodeAccessor{node: n, fields: [4]*float64{fields[i]}, stride: 1, index: -1}, nil
			}
		}
	}
	return nil, &BindingError{Segment: rest[0], Err: ErrSegmentNotFound}
}

func (n *Node) resolveChannel(name string, rest []string) (Accessor, error) {
	values := n.channels[name]
	switch len(rest) {
	case 0:
		return &nodeAccessor{node: n, channel: name, stride: len(values), index: -1}, nil
	case 1:
		idx, err := strconv.Atoi(rest[0])
		if err == nil && idx >= 0 && idx < len(values) {
			return &nodeAccessor{node: n, channel: name, stride: 1, index: idx}, nil
		}
	}
	return nil, &BindingError{Segment: rest[0], Err: ErrSegmentNotFound}
}

// nodeAccessor reads and writes either built-in fields (through pointers
// captured at resolution) or a named channel (looked up on every access so
// replaced or resized channels are detected).
type nodeAccessor struct {
	node    *Node
	fields  [4]*float64
	channel string
	index   int
	stride  int
}

func (a *nodeAccessor) Stride() int { return a.stride }

// channelValues returns the slice to read or write, or an error when the node no
// longer matches the resolved shape.
func (a *nodeAccessor) channelValues() ([]float64, error) {
	ch, ok := a.node.channels[a.channel]
	if !ok {
		return nil, ErrShapeChanged
	}
	if a.index >= 0 {
		if a.index >= len(ch) {
			return nil, ErrShapeChanged
		}
		return ch[a.index : a.index+1], nil
	}
	if len(ch) != a.stride {
		return nil, ErrShapeChanged
	}
	return ch, nil
}

func (a *nodeAccessor) Get(dst []float64) error {
	if a.node.disposed {
		return ErrTargetDisposed
	}
	if a.channel != "" {
		ch, err := a.channelValues()
		if err != nil {
			return err
		}
		copy(dst, ch)
		return nil
	}
	for i := 0; i < a.stride; i++ {
		dst[i] = *a.fields[i]
	}
	return nil
}

func (a *nodeAccessor) Set(src []float64) error {
	if a.node.disposed {
		return ErrTargetDisposed
	}
	if a.channel != "" {
		ch, err := a.channelValues()
		if err != nil {
			return err
		}
		copy(ch, src)
	} else {
		for i := 0; i < a.stride; i++ {
			*a.fields[i] = src[i]
		}
	}
	a.node.dirty = true
	return nil
}
