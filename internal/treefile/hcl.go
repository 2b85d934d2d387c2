package treefile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/petrijr/tasktree/internal/envfile"
	"github.com/petrijr/tasktree/pkg/api"
)

const (
	blockQueue    = "queue"
	blockParallel = "parallel"
	blockRun      = "run"
)

// runBodySchema is the HCL schema for the body of a run block.
var runBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "command", Required: true},
		{Name: "dir"},
		{Name: "args"},
	},
}

func parseHCL(data []byte, filename string, env envfile.Env) (any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	// hclsyntax keeps blocks in source order, which is declaration order.
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected HCL body type %T", file.Body)
	}

	if len(body.Attributes) > 0 || len(body.Blocks) != 1 {
		return nil, fmt.Errorf("%s: want exactly one top-level queue or parallel block", filename)
	}
	root := body.Blocks[0]
	if root.Type != blockQueue && root.Type != blockParallel {
		return nil, fmt.Errorf("%s: top-level block must be queue or parallel, got %q", filename, root.Type)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": envValue(env)},
	}

	desc, diags := decodeGroup(root, evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	return desc, nil
}

func envValue(env envfile.Env) cty.Value {
	vals := make(map[string]cty.Value)
	for k, v := range env.Map() {
		vals[k] = cty.StringVal(v)
	}
	if len(vals) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	return cty.MapVal(vals)
}

func blockName(block *hclsyntax.Block) (string, hcl.Diagnostics) {
	switch len(block.Labels) {
	case 0:
		return "", nil
	case 1:
		return block.Labels[0], nil
	default:
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Too many labels",
			Detail:   fmt.Sprintf("A %s block takes at most one label, its name.", block.Type),
			Subject:  block.LabelRanges[1].Ptr(),
		}}
	}
}

func decodeGroup(block *hclsyntax.Block, evalCtx *hcl.EvalContext) (*api.Composite, hcl.Diagnostics) {
	name, diags := blockName(block)

	for _, attr := range block.Body.Attributes {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected attribute",
			Detail:   fmt.Sprintf("A %s block holds only queue, parallel and run blocks.", block.Type),
			Subject:  attr.SrcRange.Ptr(),
		})
	}

	group := &api.Composite{Kind: block.Type, Name: name, Tasks: []any{}}
	for _, child := range block.Body.Blocks {
		switch child.Type {
		case blockQueue, blockParallel:
			sub, subDiags := decodeGroup(child, evalCtx)
			diags = append(diags, subDiags...)
			if sub != nil {
				group.Tasks = append(group.Tasks, sub)
			}
		case blockRun:
			spec, runDiags := decodeRun(child, evalCtx)
			diags = append(diags, runDiags...)
			group.Tasks = append(group.Tasks, spec)
		default:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported block type",
				Detail:   fmt.Sprintf("Blocks of type %q are not expected here.", child.Type),
				Subject:  child.TypeRange.Ptr(),
			})
		}
	}
	return group, diags
}

func decodeRun(block *hclsyntax.Block, evalCtx *hcl.EvalContext) (Spec, hcl.Diagnostics) {
	var spec Spec
	name, diags := blockName(block)
	spec.Name = name

	content, contentDiags := block.AsHCLBlock().Body.Content(runBodySchema)
	diags = append(diags, contentDiags...)
	if contentDiags.HasErrors() {
		return spec, diags
	}

	if attr, ok := content.Attributes["command"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, evalCtx, &spec.Run)...)
	}
	if attr, ok := content.Attributes["dir"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, evalCtx, &spec.Dir)...)
	}
	if attr, ok := content.Attributes["args"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, evalCtx, &spec.Args)...)
	}
	return spec, diags
}
