// Package strategy orchestrates the full content-strategy run: input
// acquisition, the parallel analysis stage, direction dispatch, script
// generation, and spreadsheet persistence.
package strategy

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/content-strategist/internal/acquire"
	"github.com/jonathan/content-strategist/internal/config"
	"github.com/jonathan/content-strategist/internal/direction"
	"github.com/jonathan/content-strategist/internal/feishu"
	"github.com/jonathan/content-strategist/internal/model"
	"github.com/jonathan/content-strategist/internal/normalize"
	"github.com/jonathan/content-strategist/internal/prompts"
	"github.com/jonathan/content-strategist/internal/types"
)

// Timing stage names. These appear in the rendered chart, so they keep the
// product's Chinese labels.
const (
	stageAcquisition   = "内容提取耗时"
	stageParallel      = "并行基础任务耗时"
	stageStyleResolve  = "风格类型提取耗时"
	stageFinalStrategy = "最终策略生成耗时"
	stageScript        = "视频脚本配文生成耗时"
	stagePersist       = "飞书表格处理耗时"
)

// directionKeys are probed in order on the final strategy object before
// falling back to a keyword scan.
var directionKeys = []string{"direction", "内容方向", "方向", "final_direction", "推荐方向"}

// Persister writes a finished run to the spreadsheet backend.
type Persister interface {
	Persist(ctx context.Context, titleSeed, body, label string, shots types.ShotList) feishu.PersistResult
}

// Pipeline wires the model gateway, the persistence backend, and the runtime
// configuration into one runnable unit. It is safe for concurrent use; each
// Run carries its own state.
type Pipeline struct {
	gateway model.Gateway
	sheets  Persister
	cfg     *config.Config
}

func New(gateway model.Gateway, sheets Persister, cfg *config.Config) *Pipeline {
	return &Pipeline{gateway: gateway, sheets: sheets, cfg: cfg}
}

// Result is everything a run produced. Strategy and Script survive even when
// persistence failed, so callers can surface the computed content alongside
// the error status.
type Result struct {
	RunID              string
	Status             string
	SpreadsheetURL     string
	Message            string
	StyleTypeUsed      string
	StyleSource        string
	FinalDirectionUsed string
	ResourceType       string
	Strategy           map[string]any
	DirectionPlan      map[string]any
	Script             ScriptArtifacts
	Shots              types.ShotList
	Timings            *TimingLedger
}

// analysisOutcomes holds the three parallel-stage answers. Distinct fields,
// written by distinct goroutines.
type analysisOutcomes struct {
	sellingPoints    model.Outcome
	contentDirection model.Outcome
	creatorStyle     model.Outcome
}

// Run executes the whole pipeline. A *RejectedError means the request was
// refused before any model work; a *FatalError means a required stage failed.
// Persistence failures are not errors: they degrade Result.Status instead.
func (p *Pipeline) Run(ctx context.Context, req *types.GenerateRequest) (*Result, error) {
	runID := uuid.New().String()
	timings := NewTimingLedger()
	result := &Result{RunID: runID, Timings: timings}

	if err := req.Validate(); err != nil {
		return nil, &RejectedError{Message: fmt.Sprintf("请求参数无效: %v", err)}
	}
	if !p.cfg.AcceptsStyleType(req.StyleType) {
		return nil, &RejectedError{Message: styleTypeMessage(p.cfg.StyleTypes)}
	}

	log.Printf("[%s] Step 1/6: acquiring briefing, profile, and outline...", runID)
	acquireStart := time.Now()
	bundle := acquire.Acquire(ctx, acquire.Options{
		PPTPath:       req.PPTPath,
		ProfileURL:    req.URL,
		OutlinePath:   req.VideoOutlinePath,
		UseLocal:      req.UseLocalInfluencer,
		InfluencerDir: p.cfg.InfluencerDir,
		UseBrowser:    p.cfg.UseBrowser,
		Verbose:       p.cfg.Verbose,
	})
	timings.Record(stageAcquisition, time.Since(acquireStart))
	result.ResourceType = bundle.ResourceType

	if !bundle.Briefing.Succeeded {
		return nil, &RejectedError{Message: bundle.Briefing.Document}
	}
	if acquire.IsFailure(bundle.Outline) {
		return nil, &RejectedError{Message: bundle.Outline}
	}
	if !bundle.Profile.Succeeded {
		return nil, &RejectedError{Message: bundle.Profile.Document}
	}

	var imageRefs []string
	if req.DownloadImages {
		imageRefs = bundle.Profile.ImageRefs
	}

	log.Printf("[%s] Step 2/6: running parallel analysis...", runID)
	parallelStart := time.Now()
	outcomes := p.runParallelAnalysis(ctx, req, bundle, imageRefs)
	timings.Record(stageParallel, time.Since(parallelStart))

	if outcomes.sellingPoints.Failed() {
		return nil, &FatalError{Stage: "卖点解析", Message: "处理失败", Cause: outcomes.sellingPoints.Err}
	}
	if outcomes.contentDirection.Failed() {
		return nil, &FatalError{Stage: "内容方向分析", Message: "处理失败", Cause: outcomes.contentDirection.Err}
	}

	styleStart := time.Now()
	sellingPoints := normalize.Normalize(outcomes.sellingPoints.Text)
	contentDirection := normalize.Normalize(outcomes.contentDirection.Text)
	creatorStyle, classification := p.resolveStyle(runID, req.StyleType, outcomes.creatorStyle)
	timings.Record(stageStyleResolve, time.Since(styleStart))
	result.StyleTypeUsed = classification.StyleType
	result.StyleSource = classification.Source

	log.Printf("[%s] Step 3/6: generating final strategy (style=%s, source=%s)...",
		runID, classification.StyleType, classification.Source)
	finalStart := time.Now()
	finalOutcome := p.gateway.Invoke(ctx, model.Invocation{
		SystemPrompt: prompts.MustGet("strategy.json", "final_content_system"),
		UserPrompt: prompts.Format(prompts.MustGet("strategy.json", "final_content_user"), map[string]string{
			"ContentDirection": normalize.ToText(contentDirection),
			"CreatorStyle":     normalize.ToText(creatorStyle),
			"StyleType":        classification.StyleType,
			"AdditionalInfo":   req.AdditionalInfo,
		}),
	})
	timings.Record(stageFinalStrategy, time.Since(finalStart))
	if finalOutcome.Failed() {
		return nil, &FatalError{Stage: "最终策略生成", Message: "处理失败", Cause: finalOutcome.Err}
	}
	finalStrategy := normalize.Normalize(finalOutcome.Text)
	result.Strategy = finalStrategy

	directionLabel := resolveDirection(finalStrategy, classification.StyleType)
	result.FinalDirectionUsed = directionLabel
	log.Printf("[%s] Step 4/6: dispatching direction %q...", runID, directionLabel)
	dispatched := direction.Dispatch(ctx, p.gateway, classification.StyleType, direction.Inputs{
		SellingPoints:  sellingPoints,
		CreatorStyle:   creatorStyle,
		VideoOutline:   bundle.Outline,
		Direction:      directionLabel,
		AdditionalInfo: req.AdditionalInfo,
		FinalStrategy:  finalStrategy,
	})
	if dispatched.Unknown {
		log.Printf("[%s] direction dispatch could not resolve %q: %v",
			runID, directionLabel, dispatched.Structured["error"])
	}
	result.DirectionPlan = dispatched.Structured

	log.Printf("[%s] Step 5/6: generating video script...", runID)
	scriptStart := time.Now()
	scriptOutcome := p.gateway.Invoke(ctx, model.Invocation{
		SystemPrompt: prompts.MustGet("strategy.json", "video_script_system"),
		UserPrompt: prompts.Format(prompts.MustGet("strategy.json", "video_script_user"), map[string]string{
			"CreatorStyle":  normalize.ToText(creatorStyle),
			"SellingPoints": normalize.ToText(sellingPoints),
			"FinalStrategy": normalize.ToText(finalStrategy),
			"DirectionPlan": dispatched.PlanText(),
			"StyleType":     classification.StyleType,
		}),
	})
	timings.Record(stageScript, time.Since(scriptStart))
	if scriptOutcome.Failed() {
		return nil, &FatalError{Stage: "视频脚本配文生成", Message: "处理失败", Cause: scriptOutcome.Err}
	}
	result.Script = ParseScript(scriptOutcome.Text)

	result.Shots = dispatched.Shots
	if len(result.Shots) == 0 {
		result.Shots = direction.ParseShotList(scriptOutcome.Text)
	}

	log.Printf("[%s] Step 6/6: persisting to spreadsheet...", runID)
	persistStart := time.Now()
	persisted := p.sheets.Persist(ctx, result.Script.Title, result.Script.Text, result.Script.Label, result.Shots)
	timings.Record(stagePersist, time.Since(persistStart))

	if persisted.Status == feishu.StatusSuccess {
		result.Status = "success"
		result.SpreadsheetURL = persisted.URL
		result.Message = "内容策略已生成并保存到飞书表格"
	} else {
		result.Status = "error"
		result.Message = fmt.Sprintf("内容策略生成成功，但保存到飞书表格失败: %s", persisted.Message)
	}

	log.Printf("[%s] run finished: %s\n%s", runID, result.Status, timings.RenderChart())
	return result, nil
}

// runParallelAnalysis fans the three base analyses out and joins them. Each
// goroutine writes its own field; failures are carried in the outcomes, not
// as group errors, so one slow failure never cancels its siblings.
func (p *Pipeline) runParallelAnalysis(ctx context.Context, req *types.GenerateRequest, bundle types.Bundle, imageRefs []string) analysisOutcomes {
	var out analysisOutcomes

	briefingData := map[string]string{
		"BrandName":  req.BrandName,
		"PPTContent": bundle.Briefing.Document,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.sellingPoints = p.gateway.Invoke(gctx, model.Invocation{
			SystemPrompt: prompts.MustGet("strategy.json", "selling_points_system"),
			UserPrompt:   prompts.Format(prompts.MustGet("strategy.json", "selling_points_user"), briefingData),
		})
		return nil
	})
	g.Go(func() error {
		out.contentDirection = p.gateway.Invoke(gctx, model.Invocation{
			SystemPrompt: prompts.MustGet("strategy.json", "content_direction_system"),
			UserPrompt:   prompts.Format(prompts.MustGet("strategy.json", "content_direction_user"), briefingData),
		})
		return nil
	})
	g.Go(func() error {
		out.creatorStyle = p.gateway.Invoke(gctx, model.Invocation{
			SystemPrompt: prompts.MustGet("strategy.json", "creator_style_system"),
			UserPrompt: prompts.Format(prompts.MustGet("strategy.json", "creator_style_user"), map[string]string{
				"URLContent": bundle.Profile.Document,
			}),
			ImageRefs: imageRefs,
		})
		return nil
	})
	_ = g.Wait()

	return out
}

// resolveStyle turns the creator-style answer into a style object and a
// style-type classification. A failed or unparseable answer substitutes a
// default style keyed to the requested style type; the run continues.
func (p *Pipeline) resolveStyle(runID, hint string, outcome model.Outcome) (map[string]any, types.StyleClassification) {
	if outcome.Failed() {
		log.Printf("[%s] creator-style analysis failed, substituting default style: %v", runID, outcome.Err)
		return defaultStyle(hint), types.StyleClassification{StyleType: hint, Source: types.StyleSourceDefault}
	}

	style := normalize.Normalize(outcome.Text)
	if normalize.Degraded(style) {
		log.Printf("[%s] creator-style answer not structured, substituting default style", runID)
		return defaultStyle(hint), types.StyleClassification{StyleType: hint, Source: types.StyleSourceDefault}
	}

	if extracted := normalize.String(style, "style_type"); extracted != "" {
		return style, types.StyleClassification{StyleType: extracted, Source: types.StyleSourceExtracted}
	}
	return style, types.StyleClassification{StyleType: hint, Source: types.StyleSourceDefault}
}

func defaultStyle(hint string) map[string]any {
	return map[string]any{
		"style_type":     hint,
		"style_analysis": "使用默认风格分析（达人风格解析失败）",
		"tone":           "通用",
		"source":         "default",
	}
}

// resolveDirection finds the direction label the final strategy recommends:
// first an ordered field probe, then a keyword scan of the whole strategy
// text against the branch's label vocabulary. An empty return means the
// dispatcher will report an unknown direction.
func resolveDirection(finalStrategy map[string]any, styleType string) string {
	for _, key := range directionKeys {
		if v := normalize.String(finalStrategy, key); v != "" {
			return strings.TrimSpace(v)
		}
	}

	var vocabulary []string
	switch direction.BranchFor(styleType) {
	case direction.BranchEvaluation:
		vocabulary = direction.EvaluationDirections()
	case direction.BranchSeeding:
		vocabulary = direction.SeedingDirections()
	}

	text := normalize.ToText(finalStrategy)
	for _, label := range vocabulary {
		if strings.Contains(text, label) {
			return label
		}
	}
	return ""
}

func styleTypeMessage(accepted []string) string {
	quoted := make([]string, len(accepted))
	for i, s := range accepted {
		quoted[i] = "'" + s + "'"
	}
	return "风格类型必须是" + strings.Join(quoted, "或")
}
