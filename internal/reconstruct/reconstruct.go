// Package reconstruct drives the core pipeline: per-page normalization
// and heading classification fan out across workers, table
// reconciliation and the section-tree fold run on the reduced stream,
// and the assembler produces the final immutable Document.
package reconstruct

import (
	"sort"
	"sync"

	"github.com/hwachang/gonggo/internal/classify"
	"github.com/hwachang/gonggo/internal/docmodel"
	"github.com/hwachang/gonggo/internal/normalize"
	"github.com/hwachang/gonggo/internal/tables"
	"github.com/hwachang/gonggo/internal/tree"
)

// Options bundles the pipeline policy knobs.
type Options struct {
	Classifier classify.Config
	Reconciler tables.Config
	// PageWorkers bounds the per-page fan-out; values below 1 fall back
	// to 4.
	PageWorkers int
}

func DefaultOptions() Options {
	return Options{
		Classifier:  classify.DefaultConfig(),
		Reconciler:  tables.DefaultConfig(),
		PageWorkers: 4,
	}
}

// Reconstruct runs the full pipeline over already-materialized page
// primitives. It returns the Document together with the accumulated
// non-fatal diagnostics; fatal conditions (empty input, structural
// violations) abort with no Document.
func Reconstruct(source string, pages []normalize.PageInput, opts Options) (*docmodel.Document, []docmodel.Diagnostic, error) {
	if len(pages) == 0 {
		return nil, nil, docmodel.ErrEmptyPageSet
	}
	if opts.PageWorkers < 1 {
		opts.PageWorkers = 4
	}

	ordered := make([]normalize.PageInput, len(pages))
	copy(ordered, pages)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	// Page-local work is embarrassingly parallel: each worker owns its
	// page's input exclusively and writes into its own slot.
	type pageResult struct {
		page   normalize.Page
		events []classify.Event
		diags  []docmodel.Diagnostic
	}
	results := make([]pageResult, len(ordered))

	classifier := classify.New(opts.Classifier)
	sem := make(chan struct{}, opts.PageWorkers)
	var wg sync.WaitGroup
	for i, in := range ordered {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, in normalize.PageInput) {
			defer wg.Done()
			defer func() { <-sem }()
			page, diags := normalize.NormalizePage(in)
			// Blocks inside a confident table region belong to the table
			// grid; they never enter heading/content classification.
			blocks := normalize.ExcludeTableRegions(page.Blocks, page.Candidates, opts.Reconciler.MinConfidence)
			results[i] = pageResult{
				page:   page,
				events: classifier.ClassifyPage(blocks),
				diags:  diags,
			}
		}(i, in)
	}
	wg.Wait()

	var diags []docmodel.Diagnostic
	pageHeights := make(map[int]float64, len(results))
	var candidates []docmodel.TableCandidate
	events := make([][]classify.Event, len(results))
	pageNumbers := make([]int, len(results))
	for i, r := range results {
		diags = append(diags, r.diags...)
		pageHeights[r.page.Number] = r.page.Height
		candidates = append(candidates, r.page.Candidates...)
		events[i] = r.events
		pageNumbers[i] = r.page.Number
	}

	// Reconciliation and tree building consume disjoint data; they only
	// synchronize at assembly.
	type reconcileResult struct {
		tables []*docmodel.Table
		diags  []docmodel.Diagnostic
	}
	reconciled := make(chan reconcileResult, 1)
	go func() {
		ts, ds := tables.Reconcile(candidates, pageHeights, opts.Reconciler)
		reconciled <- reconcileResult{tables: ts, diags: ds}
	}()

	treeRes, err := tree.Build(events, pageNumbers)
	if err != nil {
		return nil, nil, err
	}

	rec := <-reconciled
	diags = append(diags, rec.diags...)

	doc := assemble(source, treeRes, rec.tables)
	return doc, diags, nil
}
