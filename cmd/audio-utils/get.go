package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// GetCmd prints durations.
type GetCmd struct {
	Jobs int  `short:"j" long:"jobs" description:"number of files probed concurrently" default:"1"`
	JSON bool `long:"json" description:"print one JSON object per file"`
	Args struct {
		Paths []string `positional-arg-name:"path" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

type getResult struct {
	Path     string   `json:"path"`
	Duration *float64 `json:"duration,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Execute implements flags.Commander.
func (c *GetCmd) Execute(_ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	svc, err := e.openService(e.cfg.Backend.Name)
	if err != nil {
		return err
	}

	results := make([]getResult, len(c.Args.Paths))
	g := new(errgroup.Group)
	g.SetLimit(max(c.Jobs, 1))
	for i, p := range c.Args.Paths {
		g.Go(func() error {
			results[i].Path = p
			d, err := svc.Get(p)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Duration = &d
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	enc := json.NewEncoder(stdout)
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
		if c.JSON {
			if err := enc.Encode(r); err != nil {
				return err
			}
			continue
		}
		if r.Error != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", r.Path, r.Error)
			continue
		}
		fmt.Fprintf(stdout, "%s\t%s\n", r.Path, strconv.FormatFloat(*r.Duration, 'f', -1, 64))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}
