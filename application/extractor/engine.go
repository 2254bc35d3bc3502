// Package extractor builds the action-oriented structure of a rendered page:
// which elements can be acted on, how they nest, what text describes them
// and how they cluster on screen.
package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"page_structure/application/hints"
	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

// Options configures an Extractor
type Options struct {
	// Extended stops descending into populated selection controls, matches
	// field-like wrapper classes as labels and infers required fields
	Extended bool
}

// Extractor runs extraction passes. Passes over the same document must not
// run concurrently: the marker attribute is shared page state.
type Extractor struct {
	logger *logrus.Logger
	opts   Options
}

// New - creates new extractor
func New(logger *logrus.Logger, opts Options) *Extractor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Extractor{
		logger: logger,
		opts:   opts,
	}
}

// Extract runs one pass over doc. It returns either a complete result or an
// error, never a partial tree. Every page mutation made during the pass is
// reverted before it returns.
func (x *Extractor) Extract(ctx context.Context, doc interfaces.Document) (result *entities.PageStructure, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extraction canceled: %w", err)
	}
	body := doc.Body()
	if body == nil {
		return nil, ErrNoBody
	}

	started := time.Now()
	p := newPass(doc, x.opts.Extended, x.logger)
	defer func() {
		p.release()
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrPassAborted, r)
		}
	}()

	p.sweepMarkers()
	p.normalizeSelect2()
	p.traverse(body, nil, locatorOf(body))
	p.checkRequiredValues()
	p.resolveContexts()

	registry := p.registry()
	forest := postProcess(p.forest)
	crossLink(registry)

	if err := validate(registry, forest); err != nil {
		return nil, err
	}

	scrollX, scrollY := doc.ScrollOffset()
	markers := hints.NewOverlay(scrollX, scrollY).CreateHintMarkers(hints.GroupElementsVisually(registry))

	locators := make(map[int]string, len(p.entries))
	categories := make(map[string]int)
	for _, e := range p.entries {
		locators[e.node.ID] = e.locator
		categories[e.category.name()]++
	}

	x.logger.WithFields(logrus.Fields{
		"elements":   len(registry),
		"roots":      len(forest),
		"markers":    len(markers),
		"categories": categories,
		"took":       time.Since(started),
	}).Debug("extraction pass finished")

	return &entities.PageStructure{
		Registry:    registry,
		Forest:      forest,
		HintMarkers: markers,
		Locators:    locators,
	}, nil
}
