package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/selgo-dev/selgo-web/internal/catalog"
	"github.com/selgo-dev/selgo-web/internal/guard"
	"github.com/selgo-dev/selgo-web/internal/models"
	"github.com/selgo-dev/selgo-web/internal/pages"
	"github.com/selgo-dev/selgo-web/internal/session"
	"github.com/selgo-dev/selgo-web/internal/tasks"
)

// PostAdRequest is the new listing form
type PostAdRequest struct {
	Vertical    string `form:"vertical" validate:"required,vertical"`
	Title       string `form:"title" validate:"required,min=3,max=120"`
	Price       string `form:"price" validate:"required,numeric"`
	Location    string `form:"location" validate:"max=80"`
	Description string `form:"description" validate:"max=4000"`
}

// ProfileRequest is the display name form on the profile page
type ProfileRequest struct {
	Name string `form:"name" validate:"required,max=80"`
}

const homeLatestPerVertical = 4

func (s *Server) home(c *gin.Context) {
	ctx := c.Request.Context()

	featured, err := s.catalog.Featured(ctx, "", s.config.Site.FeaturedPerPage)
	if err != nil {
		s.renderError(c, err, "Failed to load featured listings")
		return
	}

	latest := make(map[string][]models.Listing)
	for _, slug := range catalog.Slugs() {
		page, err := s.catalog.List(ctx, catalog.Query{Vertical: slug, PerPage: homeLatestPerVertical})
		if err != nil {
			s.renderError(c, err, "Failed to load latest listings")
			return
		}
		if len(page.Listings) > 0 {
			latest[slug] = page.Listings
		}
	}

	s.render(c, http.StatusOK, pages.Home(s.layout(c), s.config.Site, featured, latest))
}

func (s *Server) verticalIndex(c *gin.Context) {
	v, ok := catalog.Lookup(c.Param("vertical"))
	if !ok {
		s.notFound(c)
		return
	}

	var q catalog.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		s.logger.Debug().Err(err).Msg("Ignoring invalid listing filters")
		q = catalog.Query{}
	}
	q.Vertical = v.Slug

	ctx := c.Request.Context()
	result, err := s.catalog.List(ctx, q)
	if err != nil {
		s.renderError(c, err, "Failed to list listings")
		return
	}

	featured, err := s.catalog.Featured(ctx, v.Slug, s.config.Site.FeaturedPerPage)
	if err != nil {
		s.renderError(c, err, "Failed to load featured listings")
		return
	}

	saved := s.savedListings(c)
	s.render(c, http.StatusOK, pages.VerticalIndex(s.layout(c), v, q, result, featured, saved))
}

func (s *Server) listingDetail(c *gin.Context) {
	if _, ok := catalog.Lookup(c.Param("vertical")); !ok {
		s.notFound(c)
		return
	}

	listing, err := s.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrListingNotFound) {
			s.notFound(c)
			return
		}
		s.renderError(c, err, "Failed to load listing")
		return
	}
	if listing.Vertical != c.Param("vertical") {
		c.Redirect(http.StatusMovedPermanently, pages.ListingURL(*listing))
		return
	}

	s.recordView(c, listing.ID)
	saved := s.savedListings(c)[listing.ID]
	s.render(c, http.StatusOK, pages.ListingDetail(s.layout(c), *listing, saved))
}

// recordView counts a view in the background when jobs are available
func (s *Server) recordView(c *gin.Context, listingID string) {
	if s.enqueuer == nil {
		if err := s.catalog.IncrementViews(c.Request.Context(), listingID); err != nil {
			s.logger.Warn().Err(err).Str("listing_id", listingID).Msg("Failed to record view")
		}
		return
	}

	task, err := tasks.NewRecordViewTask(listingID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to create record_view task")
		return
	}
	if _, err := s.enqueuer.Enqueue(task); err != nil {
		s.logger.Warn().Err(err).Str("listing_id", listingID).Msg("Failed to enqueue record_view task")
	}
}

// savedListings returns the favorites of the signed-in user, empty for visitors
func (s *Server) savedListings(c *gin.Context) map[string]bool {
	userID := session.FromContext(c).UserID()
	if userID == "" {
		return nil
	}
	ids, err := s.catalog.FavoriteIDs(c.Request.Context(), userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to load favorites")
		return nil
	}
	return ids
}

func (s *Server) profile(c *gin.Context) {
	user, ok := s.requireUser(c)
	if !ok {
		return
	}
	s.renderProfile(c, http.StatusOK, user, "")
}

// renderProfile shows the profile page with the user's ad and favorite counts
func (s *Server) renderProfile(c *gin.Context, status int, user *models.User, formErr string) {
	ctx := c.Request.Context()
	mine, err := s.catalog.BySeller(ctx, user.ID)
	if err != nil {
		s.renderError(c, err, "Failed to load user listings")
		return
	}
	favs, err := s.catalog.FavoriteIDs(ctx, user.ID)
	if err != nil {
		s.renderError(c, err, "Failed to load favorites")
		return
	}

	s.render(c, status, pages.Profile(s.layout(c), user, len(mine), len(favs), formErr))
}

func (s *Server) updateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	user, ok := s.requireUser(c)
	if !ok {
		return
	}

	var req ProfileRequest
	_ = c.ShouldBind(&req)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(&req); err != nil {
		s.renderProfile(c, http.StatusBadRequest, user, "Please enter a name of at most 80 characters.")
		return
	}

	if err := s.users.UpdateName(ctx, user.ID, req.Name); err != nil {
		s.renderError(c, err, "Failed to update profile")
		return
	}

	// Public pages read the name from the token, so hand out one with the new name
	user.Name = req.Name
	token, err := s.users.IssueToken(user)
	if err != nil {
		s.renderError(c, err, "Failed to refresh session")
		return
	}
	session.WriteCookie(c, token, s.cookie)

	s.logger.Info().Str("user_id", user.ID).Msg("Profile name updated")
	c.Redirect(http.StatusSeeOther, "/routes/profile")
}

func (s *Server) favorites(c *gin.Context) {
	user, ok := s.requireUser(c)
	if !ok {
		return
	}

	listings, err := s.catalog.Favorites(c.Request.Context(), user.ID)
	if err != nil {
		s.renderError(c, err, "Failed to load favorites")
		return
	}
	s.render(c, http.StatusOK, pages.Favorites(s.layout(c), listings))
}

func (s *Server) toggleFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	user, ok := s.requireUser(c)
	if !ok {
		return
	}
	id := c.Param("id")

	saved, err := s.catalog.ToggleFavorite(ctx, user.ID, id)
	if err != nil {
		if errors.Is(err, catalog.ErrListingNotFound) {
			s.notFound(c)
			return
		}
		s.renderError(c, err, "Failed to toggle favorite")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("listing_id", id).Bool("saved", saved).Msg("Favorite toggled")

	listing, err := s.catalog.Get(ctx, id)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/routes/favorites")
		return
	}
	c.Redirect(http.StatusSeeOther, pages.ListingURL(*listing))
}

// favoriteRedirect sends a GET on a favorite toggle URL to the listing. It is
// where a visitor lands after signing in from a toggle they made signed out.
func (s *Server) favoriteRedirect(c *gin.Context) {
	listing, err := s.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrListingNotFound) {
			s.notFound(c)
			return
		}
		s.renderError(c, err, "Failed to load listing")
		return
	}
	c.Redirect(http.StatusSeeOther, pages.ListingURL(*listing))
}

func (s *Server) myListings(c *gin.Context) {
	user, ok := s.requireUser(c)
	if !ok {
		return
	}

	listings, err := s.catalog.BySeller(c.Request.Context(), user.ID)
	if err != nil {
		s.renderError(c, err, "Failed to load user listings")
		return
	}
	s.render(c, http.StatusOK, pages.MyListings(s.layout(c), listings))
}

func (s *Server) postAdForm(c *gin.Context) {
	if _, ok := s.requireUser(c); !ok {
		return
	}
	values := map[string]string{"vertical": c.Query("vertical")}
	s.render(c, http.StatusOK, pages.PostAd(s.layout(c), values, ""))
}

func (s *Server) postAd(c *gin.Context) {
	user, ok := s.requireUser(c)
	if !ok {
		return
	}

	var req PostAdRequest
	if err := c.ShouldBind(&req); err != nil {
		s.render(c, http.StatusBadRequest, pages.PostAd(s.layout(c), nil, "Please fill in the form."))
		return
	}

	values := map[string]string{
		"vertical":    req.Vertical,
		"title":       req.Title,
		"price":       req.Price,
		"location":    req.Location,
		"description": req.Description,
	}
	if err := s.validator.Struct(&req); err != nil {
		msg := "Please choose a category and enter a title and price."
		if failedField(err, "Price") {
			msg = "Price must be a whole number."
		}
		s.render(c, http.StatusBadRequest, pages.PostAd(s.layout(c), values, msg))
		return
	}

	price, err := strconv.ParseInt(req.Price, 10, 64)
	if err != nil || price < 0 {
		s.render(c, http.StatusBadRequest, pages.PostAd(s.layout(c), values, "Price must be a whole number."))
		return
	}

	listing := &models.Listing{
		Vertical:    req.Vertical,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       price,
		Location:    strings.TrimSpace(req.Location),
		SellerID:    &user.ID,
	}
	if err := s.catalog.Create(c.Request.Context(), listing); err != nil {
		s.renderError(c, err, "Failed to create listing")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("listing_id", listing.ID).Str("vertical", listing.Vertical).Msg("Listing created")
	c.Redirect(http.StatusSeeOther, pages.ListingURL(*listing))
}

// requireUser returns the fetched user. Pages that rely on it are protected
// routes; if the site config left one unprotected, send the visitor to sign in.
func (s *Server) requireUser(c *gin.Context) (*models.User, bool) {
	if user := session.FromContext(c).User(); user != nil && user.ID != "" {
		return user, true
	}
	c.Redirect(http.StatusFound, guard.SignInURL(c.Request.URL.RequestURI()))
	c.Abort()
	return nil, false
}
