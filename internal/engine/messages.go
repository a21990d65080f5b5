package engine

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Command kinds carried in the "kind" field of a structpb.Struct.
const (
	KindSpawnEmitter    = "spawn_emitter"
	KindResize          = "resize"
	KindEmitterDefaults = "emitter_defaults"
	KindClearEmitters   = "clear_emitters"
	KindOverlay         = "overlay"
)

// TickMessage asks the world to advance one step. dt is the frame delta, kept for logging.
func TickMessage(dt time.Duration) *durationpb.Duration {
	return durationpb.New(dt)
}

func SpawnEmitterCommand(x, y float64) *structpb.Struct {
	return newCommand(KindSpawnEmitter, map[string]*structpb.Value{
		"x": structpb.NewNumberValue(x),
		"y": structpb.NewNumberValue(y),
	})
}

func ResizeCommand(width, height float64) *structpb.Struct {
	return newCommand(KindResize, map[string]*structpb.Value{
		"width":  structpb.NewNumberValue(width),
		"height": structpb.NewNumberValue(height),
	})
}

func EmitterDefaultsCommand(radius, shrinkRate float64) *structpb.Struct {
	return newCommand(KindEmitterDefaults, map[string]*structpb.Value{
		"radius":     structpb.NewNumberValue(radius),
		"shrinkRate": structpb.NewNumberValue(shrinkRate),
	})
}

func ClearEmittersCommand() *structpb.Struct {
	return newCommand(KindClearEmitters, nil)
}

// OverlayCommand toggles quadtree regions in the published snapshots.
func OverlayCommand(enabled bool) *structpb.Struct {
	return newCommand(KindOverlay, map[string]*structpb.Value{
		"enabled": structpb.NewBoolValue(enabled),
	})
}

func newCommand(kind string, fields map[string]*structpb.Value) *structpb.Struct {
	if fields == nil {
		fields = make(map[string]*structpb.Value, 1)
	}
	fields["kind"] = structpb.NewStringValue(kind)
	return &structpb.Struct{Fields: fields}
}

// command is a decoded structpb command.
type command struct {
	kind    string
	a, b    float64
	enabled bool
}

func decodeCommand(s *structpb.Struct) (command, error) {
	kindValue, ok := s.GetFields()["kind"]
	if !ok {
		return command{}, fmt.Errorf("command without kind: %v", s)
	}
	cmd := command{kind: kindValue.GetStringValue()}

	var err error
	switch cmd.kind {
	case KindSpawnEmitter:
		cmd.a, cmd.b, err = numbers(s, "x", "y")
	case KindResize:
		cmd.a, cmd.b, err = numbers(s, "width", "height")
	case KindEmitterDefaults:
		cmd.a, cmd.b, err = numbers(s, "radius", "shrinkRate")
	case KindClearEmitters:
	case KindOverlay:
		v, ok := s.GetFields()["enabled"]
		if !ok {
			return command{}, fmt.Errorf("%s: missing field enabled", cmd.kind)
		}
		cmd.enabled = v.GetBoolValue()
	default:
		return command{}, fmt.Errorf("unknown command kind %q", cmd.kind)
	}
	if err != nil {
		return command{}, fmt.Errorf("%s: %w", cmd.kind, err)
	}
	return cmd, nil
}

func numbers(s *structpb.Struct, first, second string) (float64, float64, error) {
	a, err := number(s, first)
	if err != nil {
		return 0, 0, err
	}
	b, err := number(s, second)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func number(s *structpb.Struct, key string) (float64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("missing field %s", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %s is not a number", key)
	}
	return n.NumberValue, nil
}
