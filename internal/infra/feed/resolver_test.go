package feed_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"news-cadence/internal/domain/entity"
	"news-cadence/internal/infra/feed"
	"news-cadence/internal/usecase/harvest"
)

func TestResolverPlan_DeclaredFeed(t *testing.T) {
	outlet := &entity.Outlet{
		ID: "times-a", Name: "Times A",
		HomepageURL: "https://times-a.example",
		FeedURL:     "https://times-a.example/custom/feed",
	}

	got := feed.NewResolver().Plan(outlet, nil)
	want := []harvest.Attempt{
		{Method: entity.MethodFeed, URL: "https://times-a.example/custom/feed"},
		{Method: entity.MethodSitemap, URL: "https://times-a.example/sitemap.xml"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolverPlan_WellKnownProbes(t *testing.T) {
	outlet := &entity.Outlet{
		ID: "times-a", Name: "Times A",
		HomepageURL: "https://times-a.example",
	}

	got := feed.NewResolver().Plan(outlet, nil)
	want := []harvest.Attempt{
		{Method: entity.MethodFeed, URL: "https://times-a.example/feed"},
		{Method: entity.MethodFeed, URL: "https://times-a.example/rss"},
		{Method: entity.MethodFeed, URL: "https://times-a.example/rss.xml"},
		{Method: entity.MethodFeed, URL: "https://times-a.example/feed.xml"},
		{Method: entity.MethodFeed, URL: "https://times-a.example/index.xml"},
		{Method: entity.MethodSitemap, URL: "https://times-a.example/sitemap.xml"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolverPlan_RobotsSitemapPreferred(t *testing.T) {
	outlet := &entity.Outlet{
		ID: "times-a", Name: "Times A",
		HomepageURL: "https://times-a.example",
		FeedURL:     "https://times-a.example/feed.xml",
	}

	got := feed.NewResolver().Plan(outlet, []string{
		"https://times-a.example/news-sitemap.xml",
		"https://times-a.example/other-sitemap.xml",
	})
	if len(got) != 2 {
		t.Fatalf("attempts=%d", len(got))
	}
	last := got[len(got)-1]
	if last.Method != entity.MethodSitemap || last.URL != "https://times-a.example/news-sitemap.xml" {
		t.Fatalf("sitemap attempt=%+v", last)
	}
}

func TestResolverPlan_FeedOnlyOutletHasNoSitemapFallback(t *testing.T) {
	outlet := &entity.Outlet{
		ID: "times-a", Name: "Times A",
		FeedURL: "https://feeds.example/times-a.xml",
	}

	got := feed.NewResolver().Plan(outlet, nil)
	want := []harvest.Attempt{
		{Method: entity.MethodFeed, URL: "https://feeds.example/times-a.xml"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolverPlan_Unresolvable(t *testing.T) {
	if got := feed.NewResolver().Plan(&entity.Outlet{ID: "x", Name: "X"}, nil); got != nil {
		t.Fatalf("plan=%v, want nil", got)
	}
}
