// Package direction dispatches a resolved direction label to its prompt
// template and turns the single resulting model call into a structured object
// or a shot list. Dispatch is a pure lookup plus one side-effecting call; it
// holds no state across invocations.
package direction

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/content-strategist/internal/model"
	"github.com/jonathan/content-strategist/internal/normalize"
	"github.com/jonathan/content-strategist/internal/types"
)

// Branch identifies which processor family a style type belongs to.
type Branch string

// The two processor branches. Evaluation produces shot lists; seeding
// produces structured content plans.
const (
	BranchEvaluation Branch = "evaluation"
	BranchSeeding    Branch = "seeding"
	BranchUnknown    Branch = ""
)

// Inputs carries everything a processor needs for its one model call.
type Inputs struct {
	SellingPoints  map[string]any
	CreatorStyle   map[string]any
	VideoOutline   string
	Direction      string
	AdditionalInfo string
	FinalStrategy  map[string]any
}

// Result is the outcome of one dispatch: a structured object for the seeding
// branch, a shot list for the evaluation branch, or an unknown-direction
// marker. A failed model call is reported in Structured under "error".
type Result struct {
	Branch     Branch         `json:"branch"`
	Structured map[string]any `json:"structured,omitempty"`
	Shots      types.ShotList `json:"shots,omitempty"`
	Unknown    bool           `json:"unknown,omitempty"`
}

// PlanText renders whatever the dispatch produced as canonical JSON so
// downstream prompts can consume it. Empty results render as an empty string.
func (r Result) PlanText() string {
	if len(r.Structured) > 0 {
		return normalize.ToText(r.Structured)
	}
	if len(r.Shots) > 0 {
		data, err := json.Marshal(map[string]any{"shot_list": r.Shots})
		if err != nil {
			return ""
		}
		return string(data)
	}
	return ""
}

// BranchFor resolves a style-type value to a processor branch. Historical
// revisions of the product spelled the categories inconsistently (测评类 vs
// 评测类, 种草类 vs 中草类), so matching is by the stable stem rather than the
// exact configured spelling.
func BranchFor(styleType string) Branch {
	switch {
	case strings.Contains(styleType, "测评") || strings.Contains(styleType, "评测"):
		return BranchEvaluation
	case strings.Contains(styleType, "种草") || strings.Contains(styleType, "中草"):
		return BranchSeeding
	default:
		return BranchUnknown
	}
}

// Dispatch routes inputs to the processor for styleType's branch. An
// unresolvable style type or direction label yields an unknown-direction
// result, never an error.
func Dispatch(ctx context.Context, gw model.Gateway, styleType string, in Inputs) Result {
	switch BranchFor(styleType) {
	case BranchEvaluation:
		return Evaluate(ctx, gw, in)
	case BranchSeeding:
		return Seed(ctx, gw, in)
	default:
		return Result{
			Unknown:    true,
			Structured: map[string]any{"error": "未知的风格类型: " + styleType},
		}
	}
}
