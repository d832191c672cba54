// Package pages composes route-level pages out of presentational widgets.
//
// Builders here are pure: they take already-loaded data and return a Page
// value that the templates render. No builder touches storage.
package pages

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/selgo-dev/selgo-web/internal/catalog"
	"github.com/selgo-dev/selgo-web/internal/config"
	"github.com/selgo-dev/selgo-web/internal/models"
	"github.com/selgo-dev/selgo-web/internal/session"
)

// Layout is the chrome shared by every page
type Layout struct {
	SiteName        string
	Nav             []Link
	CurrentPath     string
	IsAuthenticated bool
	UserName        string
}

// Page is a fully composed page
type Page struct {
	Title    string
	Layout   Layout
	Notice   string
	Sections []Section
}

// Section holds exactly one widget
type Section struct {
	Banner     *Banner
	Slider     *Slider
	Collection *CardCollection
	Form       *Form
	Details    *Details
	Pager      *Pager
}

// Form is a simple server-side form
type Form struct {
	Title  string
	Action string
	Method string // "get" or "post" (default)
	Submit string
	Error  string
	Fields []Field
	Hidden []Field
	Footer *Link
}

// Field is one form input
type Field struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Required bool
	Options  []string
}

// Details is a titled key/value panel with optional actions
type Details struct {
	Title    string
	Subtitle string
	ImageURL string
	Price    string
	Body     string
	Rows     []Row
	Actions  []Action
}

// Row is one key/value line
type Row struct {
	Label string
	Value string
}

// Action is a button; POST actions render as forms
type Action struct {
	Label  string
	Href   string
	Method string
}

// Pager links to neighbouring result pages
type Pager struct {
	Page    int
	Pages   int
	PrevURL string
	NextURL string
}

// NewLayout builds the layout for a request
func NewLayout(site config.SiteConfig, currentPath string, store *session.Store) Layout {
	nav := make([]Link, 0, len(site.Nav))
	for _, n := range site.Nav {
		active := currentPath == n.Href || strings.HasPrefix(currentPath, n.Href+"/")
		nav = append(nav, Link{Label: n.Label, Href: n.Href, Active: active})
	}

	layout := Layout{
		SiteName:    site.Name,
		Nav:         nav,
		CurrentPath: currentPath,
	}
	if store.IsAuthenticated() {
		layout.IsAuthenticated = true
		layout.UserName = store.UserName()
	}
	return layout
}

// Home composes the landing page: banner, featured slider and one grid per vertical
func Home(layout Layout, site config.SiteConfig, featured []models.Listing, latest map[string][]models.Listing) Page {
	banner := &Banner{
		Title:    site.Banner.Title,
		Subtitle: site.Banner.Subtitle,
		ImageURL: site.Banner.ImageURL,
	}
	if site.Banner.CTAHref != "" {
		banner.CTA = &Link{Label: site.Banner.CTALabel, Href: site.Banner.CTAHref}
	}

	sections := []Section{{Banner: banner}}
	if len(featured) > 0 {
		slider := NewSlider("Featured", featured)
		sections = append(sections, Section{Slider: &slider})
	}

	for _, v := range catalog.Verticals() {
		listings, ok := latest[v.Slug]
		if !ok {
			continue
		}
		grid := GenericCardCollection(CollectionConfig{
			Title:   "Latest in " + strings.ToLower(v.Name),
			Columns: 4,
			Limit:   4,
			MoreURL: "/routes/" + v.Slug,
		}, listings)
		sections = append(sections, Section{Collection: &grid})
	}

	return Page{Title: site.Name, Layout: layout, Sections: sections}
}

// VerticalIndex composes a vertical's search page
func VerticalIndex(layout Layout, v catalog.Vertical, q catalog.Query, result catalog.Page, featured []models.Listing, saved map[string]bool) Page {
	sections := []Section{{Banner: &Banner{Title: v.Name, Subtitle: v.Description}}}

	sections = append(sections, Section{Form: &Form{
		Action: "/routes/" + v.Slug,
		Method: "get",
		Submit: "Search",
		Fields: []Field{
			{Name: "q", Label: "Search", Type: "search", Value: q.Search},
			{Name: "min_price", Label: "Min price", Type: "number", Value: optionalInt(q.MinPrice)},
			{Name: "max_price", Label: "Max price", Type: "number", Value: optionalInt(q.MaxPrice)},
			{Name: "sort", Label: "Sort", Type: "select", Value: q.Sort, Options: []string{
				catalog.SortNewest, catalog.SortPriceAsc, catalog.SortPriceDesc, catalog.SortPopular,
			}},
		},
	}})

	if len(featured) > 0 && result.Page <= 1 {
		slider := NewSlider("Featured "+strings.ToLower(v.Name), featured)
		sections = append(sections, Section{Slider: &slider})
	}

	grid := GenericCardCollection(CollectionConfig{
		Title:     fmt.Sprintf("%d results", result.Total),
		Columns:   3,
		EmptyText: "No listings match your search.",
		Saved:     saved,
	}, result.Listings)
	sections = append(sections, Section{Collection: &grid})

	if pages := result.Pages(); pages > 1 {
		pager := &Pager{Page: result.Page, Pages: pages}
		base := "/routes/" + v.Slug
		if result.Page > 1 {
			pager.PrevURL = pageURL(base, q, result.Page-1)
		}
		if result.HasNext() {
			pager.NextURL = pageURL(base, q, result.Page+1)
		}
		sections = append(sections, Section{Pager: pager})
	}

	return Page{Title: v.Name, Layout: layout, Sections: sections}
}

// ListingDetail composes a listing's page
func ListingDetail(layout Layout, l models.Listing, saved bool) Page {
	card := CardFromListing(l)
	details := &Details{
		Title:    l.Title,
		Subtitle: card.Subtitle,
		ImageURL: l.ImageURL,
		Price:    card.Price,
		Body:     l.Description,
		Rows:     attributeRows(l.Attributes),
	}
	details.Rows = append(details.Rows, Row{Label: "views", Value: fmt.Sprint(l.Views)})
	if l.Seller != nil {
		details.Rows = append(details.Rows, Row{Label: "seller", Value: l.Seller.Name})
	}

	label := "Save"
	if saved {
		label = "Remove from favorites"
	}
	details.Actions = []Action{{Label: label, Href: "/routes/favorites/" + l.ID, Method: "post"}}

	title := l.Title
	if v, ok := catalog.Lookup(l.Vertical); ok {
		title = l.Title + " | " + v.Name
	}
	return Page{Title: title, Layout: layout, Sections: []Section{{Details: details}}}
}

// Profile composes the signed-in user's profile page
func Profile(layout Layout, u *models.User, listingCount, favoriteCount int, formErr string) Page {
	details := &Details{
		Title: u.Name,
		Rows: []Row{
			{Label: "email", Value: u.Email},
			{Label: "member since", Value: memberSince(u.CreatedAt)},
			{Label: "ads", Value: fmt.Sprint(listingCount)},
			{Label: "favorites", Value: fmt.Sprint(favoriteCount)},
		},
		Actions: []Action{
			{Label: "My ads", Href: "/routes/my-ads"},
			{Label: "Favorites", Href: "/routes/favorites"},
			{Label: "Sign out", Href: "/routes/auth/logout", Method: "post"},
		},
	}
	rename := &Form{
		Title:  "Display name",
		Action: "/routes/profile",
		Submit: "Save",
		Error:  formErr,
		Fields: []Field{
			{Name: "name", Label: "Name", Type: "text", Value: u.Name, Required: true},
		},
	}
	return Page{Title: "Profile", Layout: layout, Sections: []Section{{Details: details}, {Form: rename}}}
}

// Favorites composes the saved listings page
func Favorites(layout Layout, listings []models.Listing) Page {
	saved := make(map[string]bool, len(listings))
	for _, l := range listings {
		saved[l.ID] = true
	}
	grid := GenericCardCollection(CollectionConfig{
		Title:     "Favorites",
		Columns:   3,
		EmptyText: "You have not saved any listings yet.",
		Saved:     saved,
	}, listings)
	return Page{Title: "Favorites", Layout: layout, Sections: []Section{{Collection: &grid}}}
}

// MyListings composes the page of ads posted by the user
func MyListings(layout Layout, listings []models.Listing) Page {
	grid := GenericCardCollection(CollectionConfig{
		Title:     "My ads",
		Columns:   3,
		EmptyText: "You have not posted any ads yet.",
		MoreURL:   "/routes/post-ad",
	}, listings)
	return Page{Title: "My ads", Layout: layout, Sections: []Section{{Collection: &grid}}}
}

// PostAd composes the new listing form
func PostAd(layout Layout, values map[string]string, formErr string) Page {
	form := &Form{
		Title:  "Post an ad",
		Action: "/routes/post-ad",
		Submit: "Publish",
		Error:  formErr,
		Fields: []Field{
			{Name: "vertical", Label: "Category", Type: "select", Value: values["vertical"], Required: true, Options: catalog.Slugs()},
			{Name: "title", Label: "Title", Type: "text", Value: values["title"], Required: true},
			{Name: "price", Label: "Price", Type: "number", Value: values["price"], Required: true},
			{Name: "location", Label: "Location", Type: "text", Value: values["location"]},
			{Name: "description", Label: "Description", Type: "textarea", Value: values["description"]},
		},
	}
	return Page{Title: "Post an ad", Layout: layout, Sections: []Section{{Form: form}}}
}

// SignIn composes the sign-in form. redirect is carried through as a hidden field.
func SignIn(layout Layout, email, redirect, notice, formErr string) Page {
	form := &Form{
		Title:  "Sign in",
		Action: "/routes/auth/signin",
		Submit: "Sign in",
		Error:  formErr,
		Fields: []Field{
			{Name: "email", Label: "Email", Type: "email", Value: email, Required: true},
			{Name: "password", Label: "Password", Type: "password", Required: true},
		},
		Hidden: []Field{{Name: "redirect", Value: redirect}},
		Footer: &Link{Label: "Create an account", Href: withRedirect("/routes/auth/signup", redirect)},
	}
	return Page{Title: "Sign in", Layout: layout, Notice: notice, Sections: []Section{{Form: form}}}
}

// SignUp composes the registration form
func SignUp(layout Layout, email, name, redirect, formErr string) Page {
	form := &Form{
		Title:  "Create account",
		Action: "/routes/auth/signup",
		Submit: "Create account",
		Error:  formErr,
		Fields: []Field{
			{Name: "name", Label: "Name", Type: "text", Value: name, Required: true},
			{Name: "email", Label: "Email", Type: "email", Value: email, Required: true},
			{Name: "password", Label: "Password", Type: "password", Required: true},
		},
		Hidden: []Field{{Name: "redirect", Value: redirect}},
		Footer: &Link{Label: "Already have an account? Sign in", Href: withRedirect("/routes/auth/signin", redirect)},
	}
	return Page{Title: "Create account", Layout: layout, Sections: []Section{{Form: form}}}
}

// NotFound composes the 404 page
func NotFound(layout Layout) Page {
	return Page{
		Title:  "Not found",
		Layout: layout,
		Sections: []Section{{Banner: &Banner{
			Title:    "We could not find that page",
			Subtitle: "It may have been sold or removed.",
			CTA:      &Link{Label: "Back to the front page", Href: "/"},
		}}},
	}
}

// Error composes a generic failure page
func Error(layout Layout) Page {
	return Page{
		Title:  "Something went wrong",
		Layout: layout,
		Sections: []Section{{Banner: &Banner{
			Title:    "Something went wrong",
			Subtitle: "Please try again in a moment.",
			CTA:      &Link{Label: "Reload", Href: layout.CurrentPath},
		}}},
	}
}

func attributeRows(attrs map[string]string) []Row {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, Row{Label: k, Value: attrs[k]})
	}
	return rows
}

func memberSince(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2006")
}

func optionalInt(v int64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprint(v)
}
