package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/geocoder89/fitspark/internal/api"
	"github.com/geocoder89/fitspark/internal/domain/mealplan"
	"github.com/geocoder89/fitspark/internal/domain/recipe"
	"github.com/geocoder89/fitspark/internal/drafts"
	"github.com/geocoder89/fitspark/internal/editor"
	"github.com/geocoder89/fitspark/internal/http/middlewares"
	"github.com/geocoder89/fitspark/internal/session"
	"github.com/geocoder89/fitspark/internal/validation"
	"github.com/gin-gonic/gin"
)

// Draft is what Editor needs from an editor draft whose payload is P.
type Draft[P any] interface {
	DraftID() string
	Entity() string
	IsEdit() bool
	Editable() bool
	Status() editor.Phase
	LoadFailure() string
	Sync(url.Values) error
	Apply(editor.Op) error
	BeginSubmit() (P, error)
	Finish(submitErr error) error
	Fail(cause error) error
}

// Editor drives one kind of admin create/edit form. The draft lives in the
// drafts store between posts; the browser only holds its id in the URL.
type Editor[P any, D Draft[P]] struct {
	*Base

	kind     drafts.Kind
	noun     string
	path     string
	template string

	blank     func() D
	newDraft  func() D
	editDraft func(id string) D
	load      func(ctx context.Context, token, id string, d D) error
	create    func(ctx context.Context, token string, p P) error
	update    func(ctx context.Context, token, id string, p P) error
	// extra supplies page data beyond the draft. An error means the
	// response is the caller's to handle, e.g. a rejected credential.
	extra func(ctx *gin.Context) (any, error)

	createRoute api.Route
	updateRoute api.Route
}

type editorView struct {
	Draft     any
	Action    string
	Cancel    string
	Errors    *validation.Error
	Message   string
	IsEdit    bool
	LoadError string
	Extra     any
}

type mealPlanExtra struct {
	Recipes      []recipe.Summary
	Catalog      recipe.Catalog
	CatalogError bool
}

const (
	msgFixFields     = "Please fix the highlighted fields."
	msgDraftExpired  = "That draft has expired. Please start again."
	msgNothingToSave = "Add some details before submitting."
	msgDraftClosed   = "This draft can no longer be changed."
)

func NewRecipeEditor(b *Base) *Editor[recipe.Payload, *editor.RecipeDraft] {
	return &Editor[recipe.Payload, *editor.RecipeDraft]{
		Base:      b,
		kind:      drafts.KindRecipe,
		noun:      "recipe",
		path:      "/admin/recipes",
		template:  "admin_recipe_editor.html",
		blank:     func() *editor.RecipeDraft { return new(editor.RecipeDraft) },
		newDraft:  editor.NewRecipeDraft,
		editDraft: editor.NewRecipeEditDraft,
		load: func(ctx context.Context, token, id string, d *editor.RecipeDraft) error {
			r, err := b.api.AdminGetRecipe(ctx, token, id)
			if err != nil {
				return err
			}
			return d.Load(r)
		},
		create:      b.api.CreateRecipe,
		update:      b.api.UpdateRecipe,
		extra:       func(*gin.Context) (any, error) { return nil, nil },
		createRoute: api.RouteAdminRecipeCreate,
		updateRoute: api.RouteAdminRecipeUpdate,
	}
}

func NewMealPlanEditor(b *Base) *Editor[mealplan.Payload, *editor.MealPlanDraft] {
	return &Editor[mealplan.Payload, *editor.MealPlanDraft]{
		Base:      b,
		kind:      drafts.KindMealPlan,
		noun:      "meal plan",
		path:      "/admin/meal-plans",
		template:  "admin_meal_plan_editor.html",
		blank:     func() *editor.MealPlanDraft { return new(editor.MealPlanDraft) },
		newDraft:  editor.NewMealPlanDraft,
		editDraft: editor.NewMealPlanEditDraft,
		load: func(ctx context.Context, token, id string, d *editor.MealPlanDraft) error {
			m, err := b.api.AdminGetMealPlan(ctx, token, id)
			if err != nil {
				return err
			}
			return d.Load(m)
		},
		create: b.api.CreateMealPlan,
		update: b.api.UpdateMealPlan,
		extra: func(ctx *gin.Context) (any, error) {
			rctx := ctx.Request.Context()
			e, err := b.catalogEntries(rctx, b.token(ctx), b.owner(ctx))
			switch {
			case err == nil:
				return mealPlanExtra{Recipes: e.Recipes, Catalog: e.Catalog}, nil
			case errors.Is(err, api.ErrUnauthorized), rctx.Err() != nil:
				return nil, err
			}
			b.log.WarnContext(rctx, "recipe_catalog_unavailable", "error", err.Error())
			return mealPlanExtra{CatalogError: true}, nil
		},
		createRoute: api.RouteAdminMealPlanCreate,
		updateRoute: api.RouteAdminMealPlanUpdate,
	}
}

func (e *Editor[P, D]) draftURL(id string) string {
	return e.path + "/drafts/" + url.PathEscape(id)
}

func (e *Editor[P, D]) key(ctx *gin.Context, id string) drafts.Key {
	return drafts.Key{Owner: e.owner(ctx), Kind: e.kind, ID: id}
}

// New starts an empty create draft and sends the browser to it.
func (e *Editor[P, D]) New(ctx *gin.Context) {
	d := e.newDraft()
	if !e.store(ctx, d) {
		return
	}
	ctx.Redirect(http.StatusSeeOther, e.draftURL(d.DraftID()))
}

// Edit starts an edit draft from the stored entity. A failed load still
// makes a draft, one that only shows why it could not be edited.
func (e *Editor[P, D]) Edit(ctx *gin.Context) {
	id := ctx.Param("id")
	d := e.editDraft(id)

	if err := e.load(ctx.Request.Context(), e.token(ctx), id, d); err != nil {
		if e.apiFailure(ctx, err) {
			return
		}
		e.log.WarnContext(ctx.Request.Context(), "draft_load_failed",
			"kind", string(e.kind),
			"entity_id", id,
			"error", err.Error(),
		)
		if ferr := d.Fail(errors.New(e.loadMessage(err))); ferr != nil {
			e.failPage(ctx, ferr, e.noun, e.path)
			return
		}
	}

	if !e.store(ctx, d) {
		return
	}
	ctx.Redirect(http.StatusSeeOther, e.draftURL(d.DraftID()))
}

func (e *Editor[P, D]) loadMessage(err error) string {
	if errors.Is(err, api.ErrNotFound) {
		return "this " + e.noun + " no longer exists."
	}
	return api.Message(err, "the server did not answer. Please try again.")
}

func (e *Editor[P, D]) Show(ctx *gin.Context) {
	d, ok := e.find(ctx)
	if !ok {
		return
	}
	e.show(ctx, http.StatusOK, d, &validation.Error{}, "")
}

// Post takes one form submission: the posted fields are synced into the
// draft, then the button's op runs.
func (e *Editor[P, D]) Post(ctx *gin.Context) {
	d, ok := e.find(ctx)
	if !ok {
		return
	}
	ctx.Set(middlewares.CtxDraftID, d.DraftID())

	if !d.Editable() {
		e.show(ctx, http.StatusConflict, d, &validation.Error{}, msgDraftClosed)
		return
	}

	if err := ctx.Request.ParseForm(); err != nil {
		e.show(ctx, http.StatusBadRequest, d, &validation.Error{}, "The form could not be read.")
		return
	}

	op, err := editor.ParseOp(ctx.Request.PostForm.Get("op"))
	if err != nil {
		e.show(ctx, http.StatusBadRequest, d, &validation.Error{}, "Unknown action.")
		return
	}

	fieldErrs := &validation.Error{}
	if err := d.Sync(ctx.Request.PostForm); err != nil && !errors.As(err, &fieldErrs) {
		e.show(ctx, http.StatusConflict, d, &validation.Error{}, msgDraftClosed)
		return
	}

	if op.Kind == editor.OpSubmit {
		if len(fieldErrs.Fields) > 0 {
			e.metrics.ObserveDraftSubmit(string(e.kind), "invalid")
			if e.store(ctx, d) {
				e.show(ctx, http.StatusUnprocessableEntity, d, fieldErrs, msgFixFields)
			}
			return
		}
		e.submit(ctx, d)
		return
	}

	if err := d.Apply(op); err != nil {
		e.log.InfoContext(ctx.Request.Context(), "draft_op_rejected", "op", op.String(), "error", err.Error())
		if e.store(ctx, d) {
			e.show(ctx, http.StatusBadRequest, d, fieldErrs, "That change could not be applied.")
		}
		return
	}
	e.metrics.ObserveDraftOp(string(e.kind), string(op.Kind))

	if !e.store(ctx, d) {
		return
	}
	if len(fieldErrs.Fields) > 0 {
		e.show(ctx, http.StatusUnprocessableEntity, d, fieldErrs, msgFixFields)
		return
	}
	ctx.Redirect(http.StatusSeeOther, e.draftURL(d.DraftID()))
}

func (e *Editor[P, D]) submit(ctx *gin.Context, d D) {
	rctx := ctx.Request.Context()

	p, err := d.BeginSubmit()
	if err != nil {
		e.metrics.ObserveDraftSubmit(string(e.kind), "invalid")
		verr := &validation.Error{}
		status, msg := http.StatusUnprocessableEntity, msgFixFields
		switch {
		case errors.As(err, &verr):
		case errors.Is(err, editor.ErrNothingToSubmit):
			verr = &validation.Error{}
			msg = msgNothingToSave
		default:
			verr = &validation.Error{}
			status, msg = http.StatusConflict, msgDraftClosed
		}
		if e.store(ctx, d) {
			e.show(ctx, status, d, verr, msg)
		}
		return
	}

	route := e.createRoute
	if d.IsEdit() {
		route = e.updateRoute
		err = e.update(rctx, e.token(ctx), d.Entity(), p)
	} else {
		err = e.create(rctx, e.token(ctx), p)
	}

	if ferr := d.Finish(err); ferr != nil {
		e.log.ErrorContext(rctx, "draft_finish_failed", "error", ferr.Error())
	}

	if err == nil {
		e.invalidate(rctx, route)
		if derr := e.drafts.Delete(rctx, e.key(ctx, d.DraftID())); derr != nil {
			e.log.WarnContext(rctx, "draft_delete_failed", "error", derr.Error())
		}
		e.metrics.ObserveDraftSubmit(string(e.kind), "ok")

		verb := "created"
		if d.IsEdit() {
			verb = "updated"
		}
		e.log.InfoContext(rctx, "draft_submitted", "kind", string(e.kind), "entity_id", d.Entity())
		e.sessions.SetFlash(ctx, session.FlashSuccess, capitalize(e.noun)+" "+verb+".")
		ctx.Redirect(http.StatusSeeOther, e.path)
		return
	}

	e.metrics.ObserveDraftSubmit(string(e.kind), "error")
	// A failed submit keeps the draft for a retry. After a rejected
	// credential it is left under the old owner key until its TTL ends.
	if !e.store(ctx, d) {
		return
	}

	if errors.Is(err, api.ErrNotFound) && d.IsEdit() {
		e.show(ctx, http.StatusNotFound, d, &validation.Error{}, "This "+e.noun+" no longer exists.")
		return
	}
	status, msg, ok := e.submitFailure(ctx, err)
	if !ok {
		return
	}
	e.show(ctx, status, d, &validation.Error{}, msg)
}

// find loads the draft named in the URL. An unknown or expired draft sends
// the user back to the list.
func (e *Editor[P, D]) find(ctx *gin.Context) (D, bool) {
	d := e.blank()
	err := e.drafts.Load(ctx.Request.Context(), e.key(ctx, ctx.Param("draft")), d)
	if err == nil {
		return d, true
	}

	if errors.Is(err, drafts.ErrNotFound) {
		e.sessions.SetFlash(ctx, session.FlashError, msgDraftExpired)
		ctx.Redirect(http.StatusSeeOther, e.path)
		return d, false
	}

	e.log.ErrorContext(ctx.Request.Context(), "draft_load_failed", "kind", string(e.kind), "error", err.Error())
	e.failPage(ctx, err, "draft", e.path)
	return d, false
}

func (e *Editor[P, D]) store(ctx *gin.Context, d D) bool {
	err := e.drafts.Save(ctx.Request.Context(), e.key(ctx, d.DraftID()), d)
	if err == nil {
		return true
	}
	e.log.ErrorContext(ctx.Request.Context(), "draft_save_failed", "kind", string(e.kind), "error", err.Error())
	e.failPage(ctx, err, "draft", e.path)
	return false
}

func (e *Editor[P, D]) show(ctx *gin.Context, status int, d D, verr *validation.Error, message string) {
	extra, err := e.extra(ctx)
	if err != nil && e.apiFailure(ctx, err) {
		return
	}

	title := "New " + e.noun
	if d.IsEdit() {
		title = "Edit " + e.noun
	}
	e.render(ctx, status, e.template, title, editorView{
		Draft:     d,
		Action:    e.draftURL(d.DraftID()),
		Cancel:    e.path,
		Errors:    verr,
		Message:   message,
		IsEdit:    d.IsEdit(),
		LoadError: d.LoadFailure(),
		Extra:     extra,
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
