package affiliate

import (
	"time"

	"github.com/linkforge/linkforge/internal/catalog"
)

// FilterSamples returns the sample records matching the keyword by
// case-insensitive substring over name, description and tags, or the full
// set when nothing matches. Records are copied with IsLive=false and a fresh
// timestamp; the originals are never mutated.
func FilterSamples(samples []catalog.Product, keyword string, now time.Time) []catalog.Product {
	matched := make([]catalog.Product, 0, len(samples))
	for _, sample := range samples {
		if sample.MatchesKeyword(keyword) {
			matched = append(matched, stampSample(sample, now))
		}
	}
	if len(matched) > 0 {
		return matched
	}
	all := make([]catalog.Product, 0, len(samples))
	for _, sample := range samples {
		all = append(all, stampSample(sample, now))
	}
	return all
}

func stampSample(sample catalog.Product, now time.Time) catalog.Product {
	sample.IsLive = false
	sample.ScrapedAt = now
	return sample
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

// DefaultConfigs describes the networks the platform integrates with out of
// the box. Credentials are filled in from the environment by the caller;
// without them each client serves its sample set.
func DefaultConfigs() []Config {
	return []Config{
		{
			Name:              "rakuten",
			BaseURL:           "https://productsearch.linksynergy.com",
			Format:            FormatXML,
			Auth:              AuthStatic,
			SampleProducts:    rakutenSamples(),
			SampleCommissions: rakutenCommissions(),
		},
		{
			Name:              "cj",
			BaseURL:           "https://ads.api.cj.com",
			Format:            FormatJSON,
			Auth:              AuthClientCredentials,
			TokenURL:          "https://api.cj.com/oauth2/token",
			SampleProducts:    cjSamples(),
			SampleCommissions: cjCommissions(),
		},
		{
			Name:              "shareasale",
			BaseURL:           "https://api.shareasale.com",
			Format:            FormatJSON,
			Auth:              AuthStatic,
			SampleProducts:    shareasaleSamples(),
			SampleCommissions: shareasaleCommissions(),
		},
		{
			Name:              "awin",
			BaseURL:           "https://api.awin.com",
			Format:            FormatJSON,
			Auth:              AuthStatic,
			ConfirmedStatuses: []string{"confirmed", "approved"},
			SampleProducts:    awinSamples(),
			SampleCommissions: awinCommissions(),
		},
		{
			Name:              "gearit",
			BaseURL:           "https://partners.gearit.com",
			Format:            FormatJSON,
			Auth:              AuthPassword,
			TokenURL:          "https://partners.gearit.com/oauth/token",
			SampleProducts:    gearitSamples(),
			SampleCommissions: gearitCommissions(),
		},
	}
}

func rakutenSamples() []catalog.Product {
	return []catalog.Product{
		{
			ID:            "rakuten_usb_hub",
			Name:          "GEARit 7-Port USB 3.0 Hub with Power Adapter",
			Price:         29.99,
			OriginalPrice: floatPtr(39.99),
			Description:   "High-speed USB 3.0 hub with individual power switches and LED indicators",
			ImageURL:      "https://images.unsplash.com/photo-1589492477829-5e65395b66cc?w=400",
			AffiliateURL:  "https://click.linksynergy.com/deeplink?id=sample&mid=12345&u1=usb-hub&murl=https://www.gearit.com/usb-hub",
			Rating:        floatPtr(4.5),
			Tags:          []string{"electronics", "usb", "hub", "power"},
			Source:        "rakuten",
			Category:      "Electronics",
		},
		{
			ID:            "rakuten_wireless_mouse",
			Name:          "Wireless Bluetooth Mouse with Ergonomic Design",
			Price:         24.99,
			OriginalPrice: floatPtr(34.99),
			Description:   "Comfortable wireless mouse with long battery life and precision tracking",
			ImageURL:      "https://images.unsplash.com/photo-1527864550417-7fd91fc51a46?w=400",
			AffiliateURL:  "https://click.linksynergy.com/deeplink?id=sample&mid=12345&u1=wireless-mouse&murl=https://example.com/mouse",
			Rating:        floatPtr(4.2),
			Tags:          []string{"electronics", "mouse", "wireless", "bluetooth", "ergonomic"},
			Source:        "rakuten",
			Category:      "Electronics",
		},
		{
			ID:            "rakuten_keyboard",
			Name:          "Mechanical Gaming Keyboard RGB Backlit",
			Price:         89.99,
			OriginalPrice: floatPtr(129.99),
			Description:   "Professional mechanical keyboard with customizable RGB lighting",
			ImageURL:      "https://images.unsplash.com/photo-1541140532154-b024d705b90a?w=400",
			AffiliateURL:  "https://click.linksynergy.com/deeplink?id=sample&mid=12345&u1=gaming-keyboard&murl=https://example.com/keyboard",
			Rating:        floatPtr(4.7),
			Tags:          []string{"electronics", "keyboard", "gaming", "mechanical", "rgb"},
			Source:        "rakuten",
			Category:      "Electronics",
		},
	}
}

func rakutenCommissions() []Commission {
	return []Commission{
		{TransactionID: "rk_001", Advertiser: "GEARit", Product: "7-Port USB 3.0 Hub", Amount: 12.50, Status: "confirmed", Date: "2024-01-08"},
		{TransactionID: "rk_002", Advertiser: "TechStore", Product: "Wireless Mouse", Amount: 6.25, Status: "pending", Date: "2024-01-12"},
	}
}

func cjSamples() []catalog.Product {
	return []catalog.Product{
		{
			ID:           "cj_usb_c_hub_pro",
			Name:         "TechGear Pro USB-C Hub Pro 8-in-1",
			Price:        59.99,
			Description:  "Premium aluminum USB-C hub with HDMI, card reader and 100W passthrough",
			ImageURL:     "https://images.unsplash.com/photo-1625842268584-8f3296236761?w=400",
			AffiliateURL: "https://www.anrdoezrs.net/click-sample?url=https://techgearpro.example/usb-c-hub",
			Rating:       floatPtr(4.6),
			ReviewsCount: intPtr(210),
			Tags:         []string{"electronics", "usb-c", "hub", "adapter"},
			Source:       "cj",
			Category:     "Electronics",
		},
		{
			ID:           "cj_project_suite",
			Name:         "CloudSoft Project Management Suite",
			Price:        149.00,
			Description:  "Enterprise project management software for distributed teams",
			ImageURL:     "https://images.unsplash.com/photo-1454165804606-c3d57bc86b40?w=400",
			AffiliateURL: "https://www.anrdoezrs.net/click-sample?url=https://cloudsoft.example/suite",
			Rating:       floatPtr(4.3),
			Tags:         []string{"software", "saas", "productivity"},
			Source:       "cj",
			Category:     "Software",
		},
	}
}

func cjCommissions() []Commission {
	return []Commission{
		{TransactionID: "cj_001", Advertiser: "TechGear Pro", Product: "USB-C Hub Pro", Amount: 45.67, Status: "confirmed", Date: "2024-01-10"},
		{TransactionID: "cj_002", Advertiser: "CloudSoft Solutions", Product: "Project Management Suite", Amount: 75.00, Status: "pending", Date: "2024-01-12"},
	}
}

func shareasaleSamples() []catalog.Product {
	return []catalog.Product{
		{
			ID:           "sas_founder_toolkit",
			Name:         "Founder Toolkit Pro Annual License",
			Price:        299.00,
			Description:  "Tools and templates for startup founders and entrepreneurs",
			ImageURL:     "https://images.unsplash.com/photo-1553729459-efe14ef6055d?w=400",
			AffiliateURL: "https://www.shareasale.com/r.cfm?b=1&u=sample&m=789",
			Rating:       floatPtr(4.4),
			Tags:         []string{"saas", "software", "startup", "tools"},
			Source:       "shareasale",
			Category:     "SaaS/Software",
		},
		{
			ID:           "sas_seo_course",
			Name:         "SEO Mastery Course",
			Price:        79.00,
			Description:  "Digital marketing course covering technical and content SEO",
			ImageURL:     "https://images.unsplash.com/photo-1432888622747-4eb9a8efeb07?w=400",
			AffiliateURL: "https://www.shareasale.com/r.cfm?b=2&u=sample&m=101",
			Rating:       floatPtr(4.1),
			Tags:         []string{"marketing", "course", "seo"},
			Source:       "shareasale",
			Category:     "Marketing",
		},
	}
}

func shareasaleCommissions() []Commission {
	return []Commission{
		{TransactionID: "sas_001", Advertiser: "SaaS Startup Tools", Product: "Founder Toolkit Pro", Amount: 89.40, Status: "confirmed", Date: "2024-01-11"},
		{TransactionID: "sas_002", Advertiser: "Digital Marketing Hub", Product: "SEO Mastery Course", Amount: 25.00, Status: "confirmed", Date: "2024-01-13"},
	}
}

func awinSamples() []catalog.Product {
	return []catalog.Product{
		{
			ID:           "awin_devtools_suite",
			Name:         "DevTools Suite Pro",
			Price:        199.00,
			Description:  "Professional web development tools and resources bundle",
			ImageURL:     "https://images.unsplash.com/photo-1461749280684-dccba630e2f6?w=400",
			AffiliateURL: "https://www.awin1.com/cread.php?awinmid=321&awinaffid=sample",
			Rating:       floatPtr(4.5),
			Tags:         []string{"software", "development", "tools"},
			Source:       "awin",
			Category:     "Development Tools",
		},
		{
			ID:           "awin_ai_assistant",
			Name:         "AI Assistant Pro Annual Plan",
			Price:        240.00,
			Description:  "Advanced AI productivity assistant with workflow automation",
			ImageURL:     "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=400",
			AffiliateURL: "https://www.awin1.com/cread.php?awinmid=654&awinaffid=sample",
			Rating:       floatPtr(4.2),
			Tags:         []string{"software", "ai", "productivity"},
			Source:       "awin",
			Category:     "AI/Software",
		},
	}
}

func awinCommissions() []Commission {
	return []Commission{
		{TransactionID: "awin_001", Advertiser: "WebDev Tools Co", Product: "DevTools Suite Pro", Amount: 67.89, Status: "approved", Date: "2024-01-09"},
		{TransactionID: "awin_002", Advertiser: "AI Assistant Pro", Product: "AI Assistant Annual Plan", Amount: 120.00, Status: "pending", Date: "2024-01-14"},
	}
}

func gearitSamples() []catalog.Product {
	return []catalog.Product{
		{
			ID:            "gearit_lifestyle_100w_smart_display",
			Name:          "GEARit Lifestyle Series - 100W USB-C to USB-C Cable Fast Charging with Smart Display, 4 Feet",
			Price:         34.99,
			OriginalPrice: floatPtr(44.99),
			Description:   "This cable features a smart digital display showing exact charging speeds and supports up to 100W power delivery.",
			ImageURL:      "https://images.unsplash.com/photo-1625842268584-8f3296236761?w=400",
			AffiliateURL:  "https://www.gearit.com/collections/usb-c-cables/products/gearit-lifestyle-series-100w-usb-c-to-usb-c-cable?aff_id=sample&utm_source=affiliate",
			Rating:        floatPtr(4.7),
			ReviewsCount:  intPtr(143),
			Features:      []string{"100W Power Delivery", "Smart Display", "USB-C to USB-C", "Real-time Charging Speed", "4 Feet Length"},
			Tags:          []string{"cables", "gearit", "usb-c", "smart-display", "100w"},
			Source:        "gearit",
			Category:      "Cables & Adapters",
		},
		{
			ID:            "gearit_lifestyle_65w_usb_c",
			Name:          "GEARit Lifestyle Series - 65W USB-C to USB-C Cable Fast Charging, 4 Feet",
			Price:         24.99,
			OriginalPrice: floatPtr(32.99),
			Description:   "A durable USB-C to USB-C cable supporting up to 65W fast charging, suitable for various devices.",
			ImageURL:      "https://images.unsplash.com/photo-1583394838336-acd977736f90?w=400",
			AffiliateURL:  "https://www.gearit.com/collections/power/products/gearit-lifestyle-series-65w-usb-c-to-usb-c-cable?aff_id=sample&utm_source=affiliate",
			Rating:        floatPtr(4.6),
			ReviewsCount:  intPtr(89),
			Features:      []string{"65W Fast Charging", "USB-C to USB-C", "Durable Design", "4 Feet Length"},
			Tags:          []string{"cables", "gearit", "usb-c", "fast-charging", "65w"},
			Source:        "gearit",
			Category:      "Cables & Adapters",
		},
		{
			ID:            "gearit_4k_dash_cam",
			Name:          "GEARit 3-Channel 4K Dash Cam - Front, Inside & Rear with GPS & Night Vision, 64GB Included",
			Price:         149.99,
			OriginalPrice: floatPtr(199.99),
			Description:   "A comprehensive dash cam system offering 4K recording for front, inside, and rear views, equipped with GPS and night vision capabilities.",
			ImageURL:      "https://images.unsplash.com/photo-1558618047-3c8c76ca7d13?w=400",
			AffiliateURL:  "https://www.gearit.com/products/gearit-4k-dual-dash-cam?aff_id=sample&utm_source=affiliate",
			Rating:        floatPtr(4.8),
			ReviewsCount:  intPtr(256),
			Features:      []string{"4K Recording", "3-Channel System", "GPS Tracking", "Night Vision", "64GB Included"},
			Tags:          []string{"electronics", "gearit", "dash-cam", "4k", "gps"},
			Source:        "gearit",
			Category:      "Electronics",
		},
		{
			ID:            "gearit_3in1_gan_charger",
			Name:          "GEARit 3-in-1 65W GaN Charger, 10000mAh Power Bank with Built-in USB-C Cable",
			Price:         89.99,
			OriginalPrice: floatPtr(119.99),
			Description:   "A versatile device combining a 65W GaN wall charger, a 10,000mAh power bank, and a built-in USB-C cable.",
			ImageURL:      "https://images.unsplash.com/photo-1606868306217-dbf5046868d2?w=400",
			AffiliateURL:  "https://www.gearit.com/products/gearit-10000mah-power-bank?aff_id=sample&utm_source=affiliate",
			Rating:        floatPtr(4.7),
			ReviewsCount:  intPtr(178),
			Features:      []string{"65W GaN Charger", "10000mAh Power Bank", "Built-in USB-C Cable", "3-in-1 Design"},
			Tags:          []string{"power", "gearit", "gan-charger", "power-bank", "wireless"},
			Source:        "gearit",
			Category:      "Power & Charging",
		},
	}
}

func gearitCommissions() []Commission {
	return []Commission{
		{TransactionID: "gr_001", Advertiser: "GEARit", Product: "100W USB-C Smart Display Cable", Amount: 5.25, Status: "confirmed", Date: "2024-01-07"},
		{TransactionID: "gr_002", Advertiser: "GEARit", Product: "4K Dash Cam", Amount: 22.50, Status: "pending", Date: "2024-01-15"},
	}
}
