// Package resources implements the generic CRUD contract shared by every
// club collection.
package resources

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cpi-it-club/club-api/internal/platform/httpx"
)

// Kind describes one resource type.
type Kind struct {
	// Name is the route segment, e.g. "events".
	Name string
	// Collection is the backing document collection.
	Collection string
	// Singular is the lower-case noun used in messages, e.g. "event".
	Singular string
	// Validate runs on insert; nil accepts any payload.
	Validate func(doc bson.M) error
	// ValidatePatch runs on update against the patch only.
	ValidatePatch func(patch bson.M) error

	title string
}

// NewKind builds a Kind and precomputes its display title.
func NewKind(name, collection, singular string, validate func(bson.M) error) Kind {
	return Kind{
		Name:       name,
		Collection: collection,
		Singular:   singular,
		Validate:   validate,
		title:      cases.Title(language.English).String(singular),
	}
}

// Title returns the capitalised singular, e.g. "Gallery Image".
func (k Kind) Title() string {
	if k.title == "" {
		return cases.Title(language.English).String(k.Singular)
	}
	return k.title
}

func (k Kind) withPatchCheck(check func(bson.M) error) Kind {
	k.ValidatePatch = check
	return k
}

func (k Kind) notFound() error {
	return httpx.NotFound(k.Title() + " not found")
}

func (k Kind) invalidID(err error) error {
	return httpx.BadRequest("Invalid "+k.Singular+" id", err)
}

// Club collections. The notice collection keeps its historical singular name.
var (
	Members     = NewKind("members", "members", "member", nil)
	Courses     = NewKind("courses", "courses", "course", nil)
	Classes     = NewKind("classes", "classes", "class", nil)
	Events      = NewKind("events", "events", "event", nil)
	Notices     = NewKind("notice", "notice", "notice", validateNotice).withPatchCheck(validateNoticePatch)
	Gallery     = NewKind("gallery", "gallery", "gallery image", nil)
	Assignments = NewKind("assignments", "assignments", "assignment", nil)
	Users       = NewKind("users", "users", "user", nil)
)

// Content lists the admin-managed content kinds with full CRUD routes.
func Content() []Kind {
	return []Kind{Notices, Events, Classes, Courses, Gallery}
}

// All lists every collection, in the order admin statistics report them.
func All() []Kind {
	return []Kind{Users, Members, Courses, Classes, Events, Notices, Gallery, Assignments}
}

func validateNotice(doc bson.M) error {
	if !present(doc, "title") || !present(doc, "date") {
		return httpx.BadRequest("Title and date are required", nil)
	}
	return nil
}

// validateNoticePatch refuses patches that would blank a required field.
func validateNoticePatch(patch bson.M) error {
	for _, field := range []string{"title", "date"} {
		if _, named := patch[field]; named && !present(patch, field) {
			return httpx.BadRequest("Title and date are required", nil)
		}
	}
	return nil
}

func present(doc bson.M, field string) bool {
	v, ok := doc[field]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}
