// Package topics adds "help <topic>" pages to a cobra command tree. Topics are
// files in an fs.FS, usually embedded in the binary. A file named
// option-<flag> documents --<flag> and is listed with the options.
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

const optionPrefix = "option-"

// DefaultExtensions are the topic file types read when Options names none
var DefaultExtensions = []string{".txt", ".md"}

// Topic is one help page
type Topic struct {
	Name    string
	Path    string
	Content string
}

// Ext returns the file extension the topic was read from
func (t *Topic) Ext() string {
	return path.Ext(t.Path)
}

// Options configures Load and Install
type Options struct {
	// Extensions lists the topic file types, with the dot.
	Extensions []string
	// Renderer formats topics for display. Defaults to PlainRenderer.
	Renderer Renderer
}

// Catalog holds the topics read from a file system
type Catalog struct {
	topics   map[string]*Topic
	renderer Renderer
}

// Load reads every topic file in fsys. A nil fsys gives an empty catalog.
func Load(fsys fs.FS, opts Options) (*Catalog, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	c := &Catalog{topics: map[string]*Topic{}, renderer: opts.Renderer}
	if c.renderer == nil {
		c.renderer = &PlainRenderer{}
	}
	if fsys == nil {
		return c, nil
	}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !slices.Contains(exts, path.Ext(p)) {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		c.topics[name] = &Topic{Name: name, Path: p, Content: string(data)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read help topics: %w", err)
	}
	return c, nil
}

// Lookup finds a topic by name. Flag spellings (--yes, -yes) find the
// option-yes topic.
func (c *Catalog) Lookup(name string) (*Topic, bool) {
	bare := strings.TrimLeft(name, "-")
	if bare == name {
		if t, ok := c.topics[name]; ok {
			return t, true
		}
	}
	t, ok := c.topics[optionPrefix+bare]
	if !ok && bare != name {
		t, ok = c.topics[bare]
	}
	return t, ok
}

// Names returns every topic name, sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.topics))
	for name := range c.topics {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Render formats a topic with the catalog's renderer
func (c *Catalog) Render(t *Topic) string {
	return c.renderer.Render(t.Content, t.Ext())
}

func (c *Catalog) writeIndex(w io.Writer, program string) {
	names := c.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, "No help topics available.")
		return
	}

	var general, options []string
	for _, name := range names {
		if opt, ok := strings.CutPrefix(name, optionPrefix); ok {
			options = append(options, "--"+opt)
		} else {
			general = append(general, name)
		}
	}

	fmt.Fprintln(w, "Available help topics:")
	for _, group := range []struct {
		title string
		names []string
	}{{"General topics:", general}, {"Option topics:", options}} {
		if len(group.names) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", group.title)
		for _, name := range group.names {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	fmt.Fprintf(w, "\nUse '%s help <topic>' to read about a specific topic.\n", program)
}

// Install loads the topics in fsys and replaces root's help command with one
// that also serves them: "help topics" lists them, "help <topic>" prints one,
// anything else falls back to command help.
func Install(root *cobra.Command, fsys fs.FS, opts Options) (*Catalog, error) {
	c, err := Load(fsys, opts)
	if err != nil {
		return nil, err
	}
	commandHelp := root.HelpFunc()
	program := root.Name()

	help := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long:  fmt.Sprintf("Help for any command or topic.\n\nList the topics with:\n  %s help topics", program),
		// Option topics are asked for as "help --flag".
		DisableFlagParsing: true,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			names := []string{"topics"}
			for _, sub := range root.Commands() {
				if !sub.Hidden {
					names = append(names, sub.Name())
				}
			}
			return append(names, c.Names()...), cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			switch {
			case len(args) == 0:
				commandHelp(root, args)
			case args[0] == "topics":
				c.writeIndex(out, program)
			default:
				if t, ok := c.Lookup(args[0]); ok {
					fmt.Fprint(out, c.Render(t))
					return
				}
				target, _, err := root.Find(args)
				if err != nil || target == nil {
					target = root
				}
				commandHelp(target, args)
			}
		},
	}
	root.SetHelpCommand(help)
	return c, nil
}
