// Package scrape drives the listing, fetching and extraction passes.
package scrape

import (
	"context"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/pve-planner/pvescrape/pkg/extract"
	"github.com/pve-planner/pvescrape/pkg/image"
)

// Source lists and downloads installer scripts.
type Source interface {
	ListScripts(ctx context.Context, dir string) ([]string, error)
	FetchRaw(ctx context.Context, repoPath string) (string, error)
}

// Reporter receives progress as categories and entries are processed.
type Reporter interface {
	Category(typ image.Type)
	Entry(name string)
}

type nopReporter struct{}

func (nopReporter) Category(image.Type) {}
func (nopReporter) Entry(string)        {}

// Scraper builds image entries from a Source.
type Scraper struct {
	source   Source
	reporter Reporter
	aliases  map[string]string
	types    []image.Type
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(s *Scraper) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithAliases replaces normalized ids found as keys with their values.
func WithAliases(aliases map[string]string) Option {
	return func(s *Scraper) {
		s.aliases = aliases
	}
}

// New creates a Scraper that processes VM scripts first, then LXC scripts.
func New(src Source, opts ...Option) *Scraper {
	s := &Scraper{
		source:   src,
		reporter: nopReporter{},
		types:    []image.Type{image.VM, image.LXC},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scrapes every category in order. The first failure aborts the run
// and no entries are returned.
func (s *Scraper) Run(ctx context.Context) ([]image.Entry, error) {
	var entries []image.Entry
	for _, typ := range s.types {
		s.reporter.Category(typ)

		files, err := s.source.ListScripts(ctx, typ.Dir())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list %s scripts", typ)
		}
		log.Debugf("Processing %d %s scripts", len(files), typ)

		for _, file := range files {
			repoPath := typ.Dir() + "/" + file
			entry, err := s.scrapeFile(ctx, typ, repoPath)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to scrape %s", repoPath)
			}
			s.reporter.Entry(entry.Name)
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *Scraper) scrapeFile(ctx context.Context, typ image.Type, repoPath string) (image.Entry, error) {
	text, err := s.source.FetchRaw(ctx, repoPath)
	if err != nil {
		return image.Entry{}, err
	}

	fields, err := extract.Extract(typ, text)
	if err != nil {
		return image.Entry{}, err
	}

	id := image.NormalizeID(fields.IDSource)
	if alias, ok := s.aliases[id]; ok {
		log.WithFields(log.Fields{"file": repoPath, "id": id, "alias": alias}).Debug("Applying id alias")
		id = alias
	}

	return image.Entry{
		ID:   id,
		Name: fields.Name,
		Type: typ,
		CPU:  fields.CPU,
		RAM:  fields.RAM,
		Disk: fields.Disk,
	}, nil
}
