package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xbst/session"
	"github.com/benz9527/xbst/xlog"
)

const helpText = `commands:
  insert <value>       add a key
  search <value>       find a key and highlight it
  remove <value>       delete a key
  resize <w> <h>       change the display area
  show                 print the laid out nodes
  json                 print the laid out nodes as JSON
  height               print the tree height
  verify               check ordering and layout
  help                 print this help
  quit                 leave
`

type repl struct {
	sess   session.Session
	con    *console
	logger xlog.XLogger
	seq    atomic.Int64
}

func newREPL(sess session.Session, con *console, logger xlog.XLogger) *repl {
	return &repl{
		sess:   sess,
		con:    con,
		logger: logger.Named("repl"),
	}
}

func (r *repl) loop(ctx context.Context) {
	r.con.printf("xbst, %s keys, type help for the commands\n", r.sess.ElementType())
	sc := bufio.NewScanner(r.con.in)
	for sc.Scan() {
		if quit := r.exec(ctx, sc.Text()); quit {
			return
		}
	}
	if err := sc.Err(); err != nil {
		r.logger.Error(err, "read commands failed")
	}
}

func (r *repl) fail(ctx context.Context, err error) {
	r.logger.WarnContext(ctx, "command failed", zap.String("error", err.Error()))
	r.con.printf("Ooops... %s\n", err.Error())
}

// exec runs one command line and reports whether the loop should stop.
func (r *repl) exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	cmd = strings.ToLower(cmd)
	arg = strings.TrimSpace(arg)
	ctx = xlog.ContextWithField(ctx, "seq", r.seq.Add(1))
	r.logger.DebugContext(ctx, "command", zap.String("cmd", cmd), zap.String("arg", arg))

	switch cmd {
	case "insert", "add":
		if err := r.sess.Insert(arg); err != nil {
			r.fail(ctx, err)
			return false
		}
		r.con.printf("inserted %s, %d nodes, height %d\n", arg, r.sess.Len(), r.sess.Height())
	case "search", "find":
		if err := r.sess.Search(arg); err != nil {
			r.fail(ctx, err)
			return false
		}
		r.con.printf("found %s\n", arg)
	case "remove", "delete":
		if err := r.sess.Remove(arg); err != nil {
			r.fail(ctx, err)
			return false
		}
		r.con.printf("removed %s, %d nodes, height %d\n", arg, r.sess.Len(), r.sess.Height())
	case "resize":
		width, height, err := parseArea(arg)
		if err != nil {
			r.fail(ctx, err)
			return false
		}
		if err = r.sess.Resize(width, height); err != nil {
			r.fail(ctx, err)
			return false
		}
		r.con.printf("display area %dx%d\n", width, height)
	case "show":
		snapshot, err := r.sess.Layout()
		if err != nil {
			r.fail(ctx, err)
			return false
		}
		r.con.write(func(w io.Writer) {
			renderSnapshot(w, snapshot)
		})
	case "json":
		snapshot, err := r.sess.Layout()
		if err != nil {
			r.fail(ctx, err)
			return false
		}
		bytes, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			r.fail(ctx, err)
			return false
		}
		r.con.printf("%s\n", bytes)
	case "height":
		r.con.printf("%d\n", r.sess.Height())
	case "verify":
		if err := r.sess.Verify(); err != nil {
			for _, e := range multierr.Errors(err) {
				r.fail(ctx, e)
			}
			return false
		}
		r.con.printf("ok\n")
	case "help":
		r.con.printf("%s", helpText)
	case "quit", "exit":
		return true
	default:
		r.fail(ctx, fmt.Errorf("unknown command %q, try help", cmd))
	}
	return false
}

func parseArea(arg string) (int, int, error) {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return 0, 0, errors.New("resize expects <width> <height>")
	}
	width, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad width: %w", err)
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad height: %w", err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("display area %dx%d must be positive", width, height)
	}
	return width, height, nil
}

func renderSnapshot(w io.Writer, snapshot session.Snapshot) {
	if len(snapshot.Nodes) == 0 {
		_, _ = fmt.Fprintf(w, "(empty tree, area %dx%d)\n", snapshot.Width, snapshot.Height)
		return
	}
	childKey := func(idx int) string {
		if idx < 0 {
			return "-"
		}
		return snapshot.Nodes[idx].Key
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%d %s nodes, height %d, area %dx%d",
		snapshot.Count, snapshot.Type, snapshot.TreeHeight, snapshot.Width, snapshot.Height))
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 24, WidthMaxEnforcer: text.WrapText},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.AppendHeader(table.Row{"depth", "key", "x", "y", "active", "left", "right"})
	for _, node := range snapshot.Nodes {
		active := ""
		if node.Active {
			active = "*"
		}
		t.AppendRow(table.Row{
			node.Depth,
			strings.Repeat("  ", node.Depth) + node.Key,
			node.X,
			node.Y,
			active,
			childKey(node.Left),
			childKey(node.Right),
		})
	}
	t.Render()
}
