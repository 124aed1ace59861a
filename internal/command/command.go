// Package command parses the tab-separated command script.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gisdb/gisdb/internal/dms"
	gisErrors "github.com/gisdb/gisdb/internal/errors"
)

// Kind identifies a script command.
type Kind string

const (
	KindBlank    Kind = ""
	KindComment  Kind = ";"
	KindWorld    Kind = "world"
	KindImport   Kind = "import"
	KindDebug    Kind = "debug"
	KindWhatIsAt Kind = "what_is_at"
	KindWhatIsIn Kind = "what_is_in"
	KindWhatIs   Kind = "what_is"
	KindQuit     Kind = "quit"
)

// DebugTarget names the structure a debug command dumps.
type DebugTarget string

const (
	DebugQuad     DebugTarget = "quad"
	DebugHash     DebugTarget = "hash"
	DebugPool     DebugTarget = "pool"
	DebugBloom    DebugTarget = "bloom"
	DebugStats    DebugTarget = "stats"
	DebugManifest DebugTarget = "manifest"
)

var debugTargets = map[DebugTarget]bool{
	DebugQuad: true, DebugHash: true, DebugPool: true,
	DebugBloom: true, DebugStats: true, DebugManifest: true,
}

// arity is the argument count each command takes.
var arity = map[Kind]int{
	KindWorld:    4,
	KindImport:   1,
	KindDebug:    1,
	KindWhatIsAt: 2,
	KindWhatIsIn: 4,
	KindWhatIs:   2,
	KindQuit:     0,
}

// Command is one parsed script line. Only the fields for its Kind are set.
// Coordinates are in seconds; the DMS text is kept in Args for reporting.
type Command struct {
	Kind Kind
	Line string
	Args []string

	// world
	West, East, South, North int64

	// import
	Source string

	// debug
	Target DebugTarget

	// what_is_at, what_is_in
	Latitude, Longitude   int64
	HalfHeight, HalfWidth int64

	// what_is
	Name, State string
}

// Parse parses one script line. Trailing CR/LF are ignored.
func Parse(line string) (*Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return &Command{Kind: KindBlank, Line: line}, nil
	}
	if strings.HasPrefix(line, ";") {
		return &Command{Kind: KindComment, Line: line}, nil
	}

	fields := strings.Split(line, "\t")
	cmd := &Command{Kind: Kind(fields[0]), Line: line, Args: fields[1:]}

	want, known := arity[cmd.Kind]
	if !known {
		return nil, gisErrors.NewScriptError(gisErrors.CodeUnknownCommand,
			fmt.Sprintf("unknown command %q", fields[0]))
	}
	if len(cmd.Args) != want {
		return nil, gisErrors.NewScriptError(gisErrors.CodeBadArity,
			fmt.Sprintf("%s takes %d arguments, got %d", cmd.Kind, want, len(cmd.Args)))
	}

	var err error
	switch cmd.Kind {
	case KindWorld:
		err = cmd.parseWorld()
	case KindImport:
		cmd.Source = cmd.Args[0]
		if cmd.Source == "" {
			err = badArg("import needs a file name", nil)
		}
	case KindDebug:
		cmd.Target = DebugTarget(cmd.Args[0])
		if !debugTargets[cmd.Target] {
			err = badArg(fmt.Sprintf("unknown debug target %q", cmd.Args[0]), nil)
		}
	case KindWhatIsAt:
		cmd.Latitude, cmd.Longitude, err = parsePoint(cmd.Args[0], cmd.Args[1])
	case KindWhatIsIn:
		err = cmd.parseWhatIsIn()
	case KindWhatIs:
		cmd.Name, cmd.State = cmd.Args[0], cmd.Args[1]
	}
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

func (c *Command) parseWorld() error {
	var err error
	if c.West, err = dms.ParseLongitude(c.Args[0]); err != nil {
		return badArg("world west bound", err)
	}
	if c.East, err = dms.ParseLongitude(c.Args[1]); err != nil {
		return badArg("world east bound", err)
	}
	if c.South, err = dms.ParseLatitude(c.Args[2]); err != nil {
		return badArg("world south bound", err)
	}
	if c.North, err = dms.ParseLatitude(c.Args[3]); err != nil {
		return badArg("world north bound", err)
	}
	return nil
}

func (c *Command) parseWhatIsIn() error {
	var err error
	if c.Latitude, c.Longitude, err = parsePoint(c.Args[0], c.Args[1]); err != nil {
		return err
	}
	if c.HalfHeight, err = parseHalf(c.Args[2]); err != nil {
		return badArg("half height", err)
	}
	if c.HalfWidth, err = parseHalf(c.Args[3]); err != nil {
		return badArg("half width", err)
	}
	return nil
}

func parsePoint(lat, long string) (int64, int64, error) {
	y, err := dms.ParseLatitude(lat)
	if err != nil {
		return 0, 0, badArg("latitude", err)
	}
	x, err := dms.ParseLongitude(long)
	if err != nil {
		return 0, 0, badArg("longitude", err)
	}
	return y, x, nil
}

func parseHalf(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", v)
	}
	return v, nil
}

func badArg(msg string, cause error) error {
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return gisErrors.NewScriptError(gisErrors.CodeBadArgument, msg)
}

// Box returns the inclusive search box of a what_is_in command as
// xLo, xHi, yLo, yHi.
func (c *Command) Box() (int64, int64, int64, int64) {
	return c.Longitude - c.HalfWidth, c.Longitude + c.HalfWidth,
		c.Latitude - c.HalfHeight, c.Latitude + c.HalfHeight
}

// Numbered reports whether the command consumes a command number in the
// report. Blank lines, comments and world do not.
func (c *Command) Numbered() bool {
	switch c.Kind {
	case KindBlank, KindComment, KindWorld:
		return false
	}
	return true
}
