package fiverr

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"fiverr-scraper/jsontree"
	"fiverr-scraper/models"
	"fiverr-scraper/utils"
)

// tierNames are the package tier labels, by position in the package list.
var tierNames = []string{"Basic", "Standard", "Premium"}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// extractGigRefs pulls the gig references out of a search page's embedded
// state. Entries without a URL are dropped.
func extractGigRefs(tree jsontree.Value) []models.GigRef {
	gigs := tree.Get("listings").Index(0).Get("gigs")

	var refs []models.GigRef
	gigs.Each(func(g jsontree.Value) {
		gigURL := absoluteGigURL(g.Get("gig_url").Str())
		if gigURL == "" {
			return
		}
		refs = append(refs, models.GigRef{
			ID:            g.Get("gig_id").Int(),
			URL:           gigURL,
			Title:         g.Get("title").Str(),
			Seller:        g.Get("seller_name").Str(),
			SellerLevel:   g.Get("seller_level").Str(),
			SellerRating:  g.Get("seller_rating", "score").Float(),
			SellerCountry: g.Get("seller_country").Str(),
			SearchPrice:   g.Get("price_i").Float(),
		})
	})
	return refs
}

// absoluteGigURL resolves the relative gig path the search payload carries.
func absoluteGigURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return baseURL + raw
}

// normalizeGig builds the stored record from a gig detail page's embedded
// state, falling back to search-page data where the detail payload is
// silent. Prices arrive in cents and delivery in hours; the record keeps
// whole currency units and days.
func normalizeGig(ref models.GigRef, tree jsontree.Value, logger *utils.Logger) *models.GigRecord {
	rec := &models.GigRecord{
		ID:            ref.ID,
		Title:         ref.Title,
		Seller:        ref.Seller,
		SellerLevel:   ref.SellerLevel,
		SellerCountry: ref.SellerCountry,
		URL:           ref.URL,
		SearchPrice:   ref.SearchPrice,
		Tags:          []string{},
		ScrapedAt:     time.Now().UTC(),
	}

	general := tree.Get("general")
	if id := general.Get("gigId").Int(); id > 0 {
		rec.ID = id
	}
	rec.Category = general.Get("categoryName").Str()
	rec.SubCategory = general.Get("subCategoryName").Str()

	gig := tree.Get("overview", "gig")
	if title := gig.Get("title").Str(); title != "" {
		rec.Title = title
	}
	if r := gig.Get("rating"); r.Exists() {
		v := r.Float()
		if v >= 0 && v <= 5 {
			rec.Rating = &v
		} else {
			logger.Debug("[fiverr] Gig %d rating %v out of range, dropping", rec.ID, v)
		}
	}
	rec.ReviewCount = int(gig.Get("ratingsCount").Int())
	if q := gig.Get("ordersInQueue"); q.Exists() {
		if n := int(q.Int()); n >= 0 {
			rec.QueueOrders = &n
		}
	}

	seller := tree.Get("overview", "seller")
	if name := seller.Get("username").Str(); name != "" {
		rec.Seller = name
	}
	if rec.Seller == "" {
		rec.Seller = "unknown"
	}
	rec.SellerPro = seller.Get("isPro").Bool() || general.Get("isPro").Bool()
	if cc := seller.Get("countryCode").Str(); cc != "" {
		rec.SellerCountry = cc
	}

	card := tree.Get("sellerCard")
	rec.SellerOneLiner = card.Get("oneLiner").Str()
	rec.SellerMemberSince = card.Get("memberSince").Str()
	rec.SellerResponseTime = int(card.Get("responseTime").Int())
	rec.SellerRecentDelivery = card.Get("recentDelivery").Str()

	if rec.Category == "" {
		rec.Category = tree.Get("overview", "categories", "category", "name").Str()
	}
	if rec.SubCategory == "" {
		rec.SubCategory = tree.Get("overview", "categories", "subCategory", "name").Str()
	}

	rec.Description = stripHTML(tree.Get("description", "content").Str())
	rec.Currency = tree.Get("currency", "name").Str()
	rec.CollectedCount = int(tree.Get("topNav", "gigCollectedCount").Int())

	tree.Get("faqs", "list").Each(func(f jsontree.Value) {
		q := f.Get("question").Str()
		a := f.Get("answer").Str()
		if q == "" && a == "" {
			return
		}
		rec.FAQs = append(rec.FAQs, models.FAQ{Question: q, Answer: a})
	})

	tree.Get("packages", "packageList").Each(func(p jsontree.Value) {
		pkg := models.Package{
			Name:         tierName(len(rec.Packages)),
			Title:        p.Get("title").Str(),
			Description:  p.Get("description").Str(),
			Price:        p.Get("price").Float() / 100,
			DeliveryDays: p.Get("duration").Float() / 24,
			Revisions:    int(p.Get("revisions", "value").Int()),
		}
		if ef := p.Get("extraFast"); ef.Exists() {
			pkg.ExtraFast = &models.ExtraFast{
				Available:     ef.Get("included").Bool(),
				DurationHours: ef.Get("duration").Float(),
				Price:         ef.Get("price").Float() / 100,
			}
		}
		p.Get("features").Each(func(ft jsontree.Value) {
			feat := models.PackageFeature{
				Name:     ft.Get("name").Str(),
				Label:    ft.Get("label").Str(),
				Type:     ft.Get("type").Str(),
				Value:    int(ft.Get("value").Int()),
				Included: ft.Get("included").Bool(),
			}
			if price := ft.Get("price").Float(); price > 0 {
				feat.Price = price / 100
			}
			pkg.Features = append(pkg.Features, feat)
		})
		rec.Packages = append(rec.Packages, pkg)
	})

	tree.Get("tags", "tagsGigList").Each(func(tag jsontree.Value) {
		if name := tag.Get("name").Str(); name != "" {
			rec.Tags = append(rec.Tags, name)
		}
	})

	rec.StartingPrice = startingPrice(rec, ref, logger)
	if len(rec.Packages) > 0 && rec.Packages[0].DeliveryDays > 0 {
		d := rec.Packages[0].DeliveryDays
		rec.DeliveryDays = &d
	}

	return rec
}

// startingPrice derives the record's starting price as the cheapest
// package, falling back to the search card's advertised price when the
// detail payload has no packages. A disagreement between the two is logged
// but the derived value wins.
func startingPrice(rec *models.GigRecord, ref models.GigRef, logger *utils.Logger) float64 {
	min := 0.0
	for _, p := range rec.Packages {
		if p.Price > 0 && (min == 0 || p.Price < min) {
			min = p.Price
		}
	}
	if min == 0 {
		return ref.SearchPrice
	}
	if ref.SearchPrice > 0 && math.Abs(ref.SearchPrice-min) > 0.009 {
		logger.Warn("[fiverr] Gig %d price mismatch: search card says %.2f, cheapest package is %.2f",
			rec.ID, ref.SearchPrice, min)
	}
	return min
}

func tierName(i int) string {
	if i < len(tierNames) {
		return tierNames[i]
	}
	return fmt.Sprintf("Package %d", i+1)
}

// stripHTML flattens a rich-text description to plain text with collapsed
// whitespace.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	plain := htmlTagPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(plain), " ")
}
