package direction

import (
	"context"
	"log"

	"github.com/jonathan/content-strategist/internal/model"
	"github.com/jonathan/content-strategist/internal/normalize"
	"github.com/jonathan/content-strategist/internal/prompts"
)

// Seeding direction labels with dedicated templates.
const (
	DirSingleSeeding = "单品种草"
	DirUnboxing      = "开箱种草"
	DirVlog          = "vlog植入"
	DirCollection    = "好物合集"
	DirDaily         = "日常种草"
)

// Tutorial sub-family: three stylistically similar labels share one template
// pair, with the concrete label interpolated into the prompt instead of
// selecting a different template.
const (
	DirTutorialSkill    = "技巧型教程干货"
	DirTutorialDIY      = "美食/DIY教程植入教程干货"
	DirTutorialSolution = "解决方案型教程干货"
)

// seedingTemplates is the lookup table for labels with their own template pair.
var seedingTemplates = map[string]templatePair{
	DirSingleSeeding: {systemKey: "single_system", userKey: "single_user"},
	DirUnboxing:      {systemKey: "unboxing_system", userKey: "unboxing_user"},
	DirVlog:          {systemKey: "vlog_system", userKey: "vlog_user"},
	DirCollection:    {systemKey: "collection_system", userKey: "collection_user"},
	DirDaily:         {systemKey: "daily_system", userKey: "daily_user"},
}

// tutorialDirections is the grouped sub-family sharing the tutorial template.
var tutorialDirections = map[string]bool{
	DirTutorialSkill:    true,
	DirTutorialDIY:      true,
	DirTutorialSolution: true,
}

// SeedingDirections returns all labels the seeding branch recognizes, in
// declared order, tutorial group last.
func SeedingDirections() []string {
	return []string{
		DirSingleSeeding, DirUnboxing, DirVlog, DirCollection, DirDaily,
		DirTutorialSkill, DirTutorialDIY, DirTutorialSolution,
	}
}

// Seed runs the seeding-branch processor: one model call through the template
// matching the direction label, normalized into a structured content plan.
func Seed(ctx context.Context, gw model.Gateway, in Inputs) Result {
	data := map[string]string{
		"SellingPoints":  normalize.ToText(in.SellingPoints),
		"CreatorStyle":   normalize.ToText(in.CreatorStyle),
		"VideoOutline":   in.VideoOutline,
		"AdditionalInfo": in.AdditionalInfo,
	}

	var pair templatePair
	switch {
	case tutorialDirections[in.Direction]:
		pair = templatePair{systemKey: "tutorial_system", userKey: "tutorial_user"}
		data["Direction"] = in.Direction
	default:
		var ok bool
		pair, ok = seedingTemplates[in.Direction]
		if !ok {
			log.Printf("no seeding direction matched %q", in.Direction)
			return Result{
				Branch:     BranchSeeding,
				Unknown:    true,
				Structured: map[string]any{"error": "未知的种草方向: " + in.Direction},
			}
		}
	}

	outcome := gw.Invoke(ctx, model.Invocation{
		SystemPrompt: prompts.MustGet("seeding.json", pair.systemKey),
		UserPrompt:   prompts.Format(prompts.MustGet("seeding.json", pair.userKey), data),
	})
	if outcome.Failed() {
		log.Printf("seeding direction %q model call failed: %v", in.Direction, outcome.Err)
		return Result{
			Branch:     BranchSeeding,
			Structured: map[string]any{"error": outcome.Err.Error()},
		}
	}

	return Result{
		Branch: BranchSeeding,
		Structured: map[string]any{
			"content_type":    "seeding",
			"direction":       in.Direction,
			"result":          normalize.Normalize(outcome.Text),
			"additional_info": in.AdditionalInfo,
		},
	}
}
