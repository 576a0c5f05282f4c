package acquire

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/content-strategist/internal/types"
)

// Options configures one acquisition pass.
type Options struct {
	PPTPath       string
	ProfileURL    string
	OutlinePath   string
	UseLocal      bool   // skip the scrape and use the local influencer directory
	InfluencerDir string // local fallback source
	UseBrowser    bool   // headless rendering for SPA profile pages
	Verbose       bool
}

// Acquire gathers the briefing, the creator profile, and the video outline in
// one pass. File reads run concurrently with the profile scrape; none of them
// depend on each other. When the caller requested local resources, or the
// scrape failed, profile content falls back to the local influencer directory.
func Acquire(ctx context.Context, opts Options) types.Bundle {
	var bundle types.Bundle

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		document := ReadBriefing(opts.PPTPath)
		bundle.Briefing = types.AcquisitionResult{
			Document:  document,
			Succeeded: !IsFailure(document),
		}
		return nil
	})

	g.Go(func() error {
		document := ReadTextFile(opts.OutlinePath)
		bundle.Outline = document
		return nil
	})

	g.Go(func() error {
		if opts.UseLocal {
			bundle.Profile = FromLocalDir(opts.InfluencerDir)
			bundle.ResourceType = types.ResourceLocal
			return nil
		}
		fetcher := NewFetcher(opts.UseBrowser, opts.Verbose)
		result := fetcher.FromURL(gctx, opts.ProfileURL)
		if IsFailure(result.Document) && opts.InfluencerDir != "" {
			bundle.Profile = FromLocalDir(opts.InfluencerDir)
			bundle.ResourceType = types.ResourceLocal
			return nil
		}
		bundle.Profile = result
		bundle.ResourceType = types.ResourceRemote
		return nil
	})

	// The goroutines only ever return nil; the group exists for the join.
	_ = g.Wait()

	return bundle
}
