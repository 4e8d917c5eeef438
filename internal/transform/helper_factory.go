package transform

import (
	"strconv"

	"downlevel/internal/ast"
	"downlevel/internal/emitnode"
	"downlevel/internal/helpers"
)

// HelperFactory builds calls to runtime helpers. Each method requests the
// helper (and its dependencies) for the current file and flags the callee
// as a helper binding.
type HelperFactory struct {
	ctx *Context
}

// UnscopedHelperName creates the identifier of a global helper binding.
func (h *HelperFactory) UnscopedHelperName(name string) ast.ExprID {
	id := h.ctx.Factory.Ident(name)
	h.ctx.Table.SetFlags(ast.ExprNode(id), emitnode.HelperName|emitnode.AdviseOnEmitNode)
	return id
}

func (h *HelperFactory) call(id helpers.ID, args ...ast.ExprID) ast.ExprID {
	return h.ctx.Factory.Call(h.UnscopedHelperName(helpers.MustLookup(id).ImportName), args)
}

func (h *HelperFactory) voidOr(cond bool, yes func() ast.ExprID) ast.ExprID {
	if cond {
		return yes()
	}
	return h.ctx.Factory.VoidZero()
}

// CreateDecorateHelper: __decorate([decorators], target, memberName?, descriptor?)
func (h *HelperFactory) CreateDecorateHelper(decorators []ast.ExprID, target, memberName, descriptor ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.Decorate)
	arr := h.ctx.Factory.Array(decorators)
	h.ctx.Table.AddFlags(ast.ExprNode(arr), emitnode.StartOnNewLine)
	args := []ast.ExprID{arr, target}
	if memberName.IsValid() {
		args = append(args, memberName)
		if descriptor.IsValid() {
			args = append(args, descriptor)
		}
	}
	return h.call(helpers.Decorate, args...)
}

func (h *HelperFactory) CreateMetadataHelper(key string, value ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.Metadata)
	return h.call(helpers.Metadata, h.ctx.Factory.String(key), value)
}

func (h *HelperFactory) CreateParamHelper(expr ast.ExprID, offset int) ast.ExprID {
	h.ctx.RequestHelper(helpers.Param)
	return h.call(helpers.Param, h.ctx.Factory.Number(strconv.Itoa(offset)), expr)
}

// CreateAssignHelper uses Object.assign when the target has it.
func (h *HelperFactory) CreateAssignHelper(segments []ast.ExprID) ast.ExprID {
	f := h.ctx.Factory
	if h.ctx.Target.Supports(FeatureObjectAssign) {
		return f.Call(f.Property(f.Ident("Object"), h.ctx.B.Intern("assign")), segments)
	}
	h.ctx.RequestHelper(helpers.Assign)
	return h.call(helpers.Assign, segments...)
}

func (h *HelperFactory) CreateAwaitHelper(expr ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.Await)
	return h.call(helpers.Await, expr)
}

// CreateAsyncGeneratorHelper marks fn as the body of a lowered async function.
func (h *HelperFactory) CreateAsyncGeneratorHelper(fn ast.ExprID, hasLexicalThis bool) ast.ExprID {
	h.ctx.RequestHelper(helpers.Await, helpers.AsyncGenerator)
	h.ctx.Table.AddFlags(ast.ExprNode(fn), emitnode.AsyncFunctionBody)
	f := h.ctx.Factory
	return h.call(helpers.AsyncGenerator, h.voidOr(hasLexicalThis, f.This), f.Ident("arguments"), fn)
}

func (h *HelperFactory) CreateAsyncDelegatorHelper(expr ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.Await, helpers.AsyncDelegator)
	return h.call(helpers.AsyncDelegator, expr)
}

func (h *HelperFactory) CreateAsyncValuesHelper(expr ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.AsyncValues)
	return h.call(helpers.AsyncValues, expr)
}

// RestProperty is one property excluded by a rest pattern. Computed keys
// carry the temporary holding the evaluated key.
type RestProperty struct {
	Name     string
	Computed ast.ExprID
}

// CreateRestHelper builds `__rest(value, ["a", ...])` for `{ a, ...rest } = value`.
func (h *HelperFactory) CreateRestHelper(value ast.ExprID, excluded []RestProperty) ast.ExprID {
	h.ctx.RequestHelper(helpers.Rest)
	f := h.ctx.Factory
	names := make([]ast.ExprID, 0, len(excluded))
	for _, p := range excluded {
		if p.Computed.IsValid() {
			// typeof _tmp === "symbol" ? _tmp : _tmp + ""
			names = append(names, f.Conditional(
				f.TypeCheck(p.Computed, "symbol"),
				p.Computed,
				f.Add(p.Computed, f.String(""))))
			continue
		}
		names = append(names, f.String(p.Name))
	}
	return h.call(helpers.Rest, value, f.Array(names))
}

// CreateAwaiterHelper wraps body into `function* () body` and passes it to __awaiter.
func (h *HelperFactory) CreateAwaiterHelper(hasLexicalThis, hasLexicalArguments bool, promiseCtor ast.ExprID, body ast.StmtID) ast.ExprID {
	h.ctx.RequestHelper(helpers.Awaiter)
	f := h.ctx.Factory
	gen := f.GeneratorFunction(body)
	h.ctx.Table.AddFlags(ast.ExprNode(gen), emitnode.AsyncFunctionBody|emitnode.ReuseTempVariableScope)
	return h.call(helpers.Awaiter,
		h.voidOr(hasLexicalThis, f.This),
		h.voidOr(hasLexicalArguments, func() ast.ExprID { return f.Ident("arguments") }),
		h.voidOr(promiseCtor.IsValid(), func() ast.ExprID { return promiseCtor }),
		gen)
}

func (h *HelperFactory) CreateExtendsHelper(name ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.Extends)
	return h.call(helpers.Extends, name, h.ctx.Factory.FileLevelUniqueName("_super"))
}

func (h *HelperFactory) CreateTemplateObjectHelper(cooked, raw ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.MakeTemplateObject)
	return h.call(helpers.MakeTemplateObject, cooked, raw)
}

func (h *HelperFactory) CreateSpreadHelper(args []ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.Read, helpers.Spread)
	return h.call(helpers.Spread, args...)
}

func (h *HelperFactory) CreateSpreadArraysHelper(args []ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.SpreadArrays)
	return h.call(helpers.SpreadArrays, args...)
}

func (h *HelperFactory) CreateValuesHelper(expr ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.Values)
	return h.call(helpers.Values, expr)
}

// CreateReadHelper passes count only when it is not negative.
func (h *HelperFactory) CreateReadHelper(iter ast.ExprID, count int) ast.ExprID {
	h.ctx.RequestHelper(helpers.Read)
	if count < 0 {
		return h.call(helpers.Read, iter)
	}
	return h.call(helpers.Read, iter, h.ctx.Factory.Number(strconv.Itoa(count)))
}

func (h *HelperFactory) CreateGeneratorHelper(body ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.Generator)
	return h.call(helpers.Generator, h.ctx.Factory.This(), body)
}

func (h *HelperFactory) CreateImportStarHelper(expr ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.ImportStar)
	return h.call(helpers.ImportStar, expr)
}

// CreateImportStarCallbackHelper returns the bare helper name for use as a callback.
func (h *HelperFactory) CreateImportStarCallbackHelper() ast.ExprID {
	h.ctx.RequestHelper(helpers.ImportStar)
	return h.UnscopedHelperName(helpers.MustLookup(helpers.ImportStar).ImportName)
}

func (h *HelperFactory) CreateImportDefaultHelper(expr ast.ExprID) ast.ExprID {
	h.ctx.RequestHelper(helpers.ImportDefault)
	return h.call(helpers.ImportDefault, expr)
}

// AddAsyncSuperHelper attaches the scoped `_superIndex` helper to a lowered
// async method body. The printer emits it at the top of that block.
func (h *HelperFactory) AddAsyncSuperHelper(body ast.StmtID, advanced bool) {
	id := helpers.AsyncSuper
	if advanced {
		id = helpers.AdvancedAsyncSuper
	}
	h.ctx.Table.AddHelper(ast.StmtNode(body), id)
}
