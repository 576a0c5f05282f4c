package direction

import (
	"context"
	"log"

	"github.com/jonathan/content-strategist/internal/model"
	"github.com/jonathan/content-strategist/internal/normalize"
	"github.com/jonathan/content-strategist/internal/prompts"
)

// Evaluation direction labels, each mapped 1:1 to a prompt-template pair.
const (
	DirSingleReview   = "单品测评"
	DirHorizontal     = "横向测评"
	DirBrandMatrix    = "同品牌矩阵"
	DirAuthenticCheck = "正盗版对比"
)

// evaluationTemplates is the total lookup table for the evaluation branch.
var evaluationTemplates = map[string]templatePair{
	DirSingleReview:   {systemKey: "single_system", userKey: "single_user"},
	DirHorizontal:     {systemKey: "horizontal_system", userKey: "horizontal_user"},
	DirBrandMatrix:    {systemKey: "matrix_system", userKey: "matrix_user"},
	DirAuthenticCheck: {systemKey: "comparison_system", userKey: "comparison_user"},
}

// templatePair names the system/user prompt keys within a prompt file.
type templatePair struct {
	systemKey string
	userKey   string
}

// EvaluationDirections returns the labels the evaluation branch recognizes,
// in declared order.
func EvaluationDirections() []string {
	return []string{DirSingleReview, DirHorizontal, DirBrandMatrix, DirAuthenticCheck}
}

// Evaluate runs the evaluation-branch processor: select the template for the
// direction label, invoke the model once, and normalize the answer into a
// shot list. An unrecognized label returns an unknown-direction result.
func Evaluate(ctx context.Context, gw model.Gateway, in Inputs) Result {
	pair, ok := evaluationTemplates[in.Direction]
	if !ok {
		log.Printf("no evaluation direction matched %q", in.Direction)
		return Result{
			Branch:     BranchEvaluation,
			Unknown:    true,
			Structured: map[string]any{"error": "未知的测评方向: " + in.Direction},
		}
	}

	userPrompt := prompts.Format(prompts.MustGet("evaluation.json", pair.userKey), map[string]string{
		"SellingPoints":  normalize.ToText(in.SellingPoints),
		"CreatorStyle":   normalize.ToText(in.CreatorStyle),
		"VideoOutline":   in.VideoOutline,
		"AdditionalInfo": in.AdditionalInfo,
	})

	outcome := gw.Invoke(ctx, model.Invocation{
		SystemPrompt: prompts.MustGet("evaluation.json", pair.systemKey),
		UserPrompt:   userPrompt,
	})
	if outcome.Failed() {
		log.Printf("evaluation direction %q model call failed: %v", in.Direction, outcome.Err)
		return Result{
			Branch:     BranchEvaluation,
			Structured: map[string]any{"error": outcome.Err.Error()},
		}
	}

	return Result{
		Branch: BranchEvaluation,
		Shots:  ParseShotList(outcome.Text),
	}
}
