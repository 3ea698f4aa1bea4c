// Command c14n2 canonicalizes an XML document read from a file or
// stdin and writes the canonical bytes to stdout.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-xmlsec/c14n2"
	"github.com/go-xmlsec/c14n2/internal/domtree"
)

var (
	flagTrimText      bool
	flagSequential    bool
	flagNoPVDNP       bool
	flagVerbose       bool
	flagQNameElements []string
	flagInclude       []string
	flagExclude       []string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	log := logrus.New()

	cmd := &cobra.Command{
		Use:   "c14n2 [file]",
		Short: "Canonicalize an XML document per XML Canonicalization 2.0",
		Long: "c14n2 reads an XML document (from the given file, or stdin if no " +
			"file is given) and writes its canonical form to stdout.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagVerbose {
				log.SetLevel(logrus.DebugLevel)
			}
			return run(cmd, args, log)
		},
	}

	cmd.Flags().BoolVar(&flagTrimText, "trim-text", false, "trim leading/trailing whitespace from text nodes, except under xml:space=\"preserve\"")
	cmd.Flags().BoolVar(&flagSequential, "sequential-prefixes", false, "rewrite namespace prefixes to sequential n0, n1, ... names")
	cmd.Flags().BoolVar(&flagNoPVDNP, "no-pvdnp", false, "disable preservation of the sequential-assignment declaration order at emission time")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log sequential prefix allocations to stderr")
	cmd.Flags().StringArrayVar(&flagQNameElements, "qname-element", nil, "namespace URI and local name (as \"uri|local\") of an element whose text content is a QName to rewrite; repeatable")
	cmd.Flags().StringArrayVar(&flagInclude, "include", nil, "slash-separated path of local names (e.g. \"/a/b/c\") to render, plus whatever else its ancestors require; repeatable")
	cmd.Flags().StringArrayVar(&flagExclude, "exclude", nil, "slash-separated path of local names (e.g. \"/a/b/c\") to drop from the output; repeatable")

	return cmd
}

func run(cmd *cobra.Command, args []string, log *logrus.Logger) error {
	var f *os.File
	if len(args) == 1 {
		var err error
		f, err = os.Open(args[0])
		if err != nil {
			return fmt.Errorf("c14n2: %w", err)
		}
		defer f.Close()
	} else {
		f = os.Stdin
	}

	root, err := domtree.FromXML(f)
	if err != nil {
		return fmt.Errorf("c14n2: parsing input: %w", err)
	}

	params := c14n2.DefaultParams()
	params.TrimTextNodes = flagTrimText
	if flagSequential {
		params.PrefixRewrite = c14n2.PrefixRewriteSequential
	}
	if flagNoPVDNP {
		params.PVDNP = false
	}

	if len(flagQNameElements) > 0 {
		params.QNameAwareElements = make(map[c14n2.QName]bool, len(flagQNameElements))
		for _, spec := range flagQNameElements {
			uri, local, ok := splitPipe(spec)
			if !ok {
				return fmt.Errorf("c14n2: --qname-element wants \"uri|local\", got %q", spec)
			}
			params.QNameAwareElements[c14n2.QName{URI: uri, LocalName: local}] = true
		}
	}

	include, err := resolvePaths(root, flagInclude)
	if err != nil {
		return fmt.Errorf("c14n2: --include: %w", err)
	}
	exclude, err := resolvePaths(root, flagExclude)
	if err != nil {
		return fmt.Errorf("c14n2: --exclude: %w", err)
	}

	entry := logrus.NewEntry(log)
	out, err := c14n2.Canonicalize(root, params, include, exclude, c14n2.WithLogger(entry))
	if err != nil {
		return fmt.Errorf("c14n2: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func splitPipe(s string) (before, after string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// resolvePaths resolves each of paths against root via resolvePath and
// returns the matched nodes in the same order.
func resolvePaths(root c14n2.Node, paths []string) ([]c14n2.Node, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	nodes := make([]c14n2.Node, 0, len(paths))
	for _, p := range paths {
		n, err := resolvePath(root, p)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// resolvePath walks path - a slash-separated sequence of local names,
// optionally starting with a leading slash for root - against root's
// subtree, descending into the first matching child's local name at each
// step. It's deliberately the simplest thing that can select a node from
// the command line; it has no predicates, no wildcards, and no namespace
// awareness.
func resolvePath(root c14n2.Node, path string) (c14n2.Node, error) {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segments) == 1 && segments[0] == "" {
		return root, nil
	}
	if segments[0] != root.LocalName() {
		return nil, fmt.Errorf("path %q: root element is %q, not %q", path, root.LocalName(), segments[0])
	}

	cur := root
	for _, seg := range segments[1:] {
		var next c14n2.Node
		for _, child := range cur.ChildNodes() {
			if child.Type() == c14n2.NodeElement && child.LocalName() == seg {
				next = child
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("path %q: no child named %q under %q", path, seg, cur.LocalName())
		}
		cur = next
	}
	return cur, nil
}
