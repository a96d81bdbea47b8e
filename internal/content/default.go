package content

// Default returns the built-in landing page content
func Default() *Site {
	return &Site{
		Brand: Brand{Name: "DREAM DIGITAL", Tagline: "力 • 光"},
		Meta: Meta{
			Title:       "DREAM DIGITAL | Websites in 72 hours from $300",
			Description: "DREAM DIGITAL builds fast, bold, conversion-ready websites. Landing pages in 72 hours, fixed prices from $300.",
			Keywords:    "web design, landing page, website development, SEO, e-commerce",
			Author:      "DREAM DIGITAL",
			URL:         "https://dreamdigital.studio/",
			Image:       "https://dreamdigital.studio/og-image.png",
			ThemeColor:  "#000000",
		},
		Hero: Hero{
			Headline:    "DREAM",
			Subheadline: "DIGITAL",
			Subtitle:    "Your website in 72 hours, starting at $300.",
			Action:      "START PROJECT",
		},
		USPs: []Feature{
			{Title: "72h Delivery", Description: "Lightning fast turnaround for your digital presence"},
			{Title: "Fixed Price from $300", Description: "Transparent pricing with no hidden surprises"},
			{Title: "SEO & Ad-ready", Description: "Optimized for search engines and advertising platforms"},
			{Title: "Ongoing Support", Description: "Continuous maintenance and updates included"},
		},
		Advantages: []Feature{
			{Title: "Speed • Power", Description: "Lightning-fast delivery without compromising quality"},
			{Title: "Transparency • Value", Description: "Clear pricing and exceptional value for your investment"},
			{Title: "Bold • Design", Description: "Striking visuals that make your brand unforgettable"},
			{Title: "Ad-ready", Description: "Optimized for conversions and advertising platforms"},
		},
		Process: []Feature{
			{Title: "Request", Description: "Share your vision and requirements with our team"},
			{Title: "Design", Description: "We create stunning mockups based on your brand"},
			{Title: "Build", Description: "Development with cutting-edge technology"},
			{Title: "Launch", Description: "Deploy your website and watch it perform"},
		},
		Pricing: []Package{
			{ID: "lite", Name: "Lite", Price: "$300", Description: "1-page landing",
				Features: []string{"Single landing page", "Mobile responsive", "Basic SEO", "72h delivery"}},
			{ID: "standard", Name: "Standard", Price: "$700", Description: "3–5 pages",
				Features: []string{"Multi-page website", "Contact forms", "Analytics setup", "7 days support"}},
			{ID: "pro", Name: "Pro", Price: "$1500+", Description: "corporate",
				Features: []string{"Custom design", "CMS integration", "Advanced SEO", "Admin panel"}},
			{ID: "custom", Name: "Custom", Price: "$2500+", Description: "custom, e-commerce",
				Features: []string{"E-commerce ready", "Custom functionality", "Full branding", "Multi-language"}},
		},
		Portfolio: []Project{
			{Title: "Tech Startup", Category: "Landing Page", Description: "Modern SaaS platform with clean design"},
			{Title: "Mobile App", Category: "UI/UX Design", Description: "Intuitive mobile experience design"},
			{Title: "E-commerce", Category: "Full Website", Description: "Conversion-optimized online store"},
			{Title: "Corporate", Category: "Brand Identity", Description: "Professional corporate presence"},
		},
		Testimonials: []Testimonial{
			{Name: "Sarah Chen", Company: "TechFlow", Rating: 5,
				Review: "DREAM delivered our landing page in 48 hours. The neon aesthetics perfectly captured our brand's futuristic vision."},
			{Name: "Marcus Rodriguez", Company: "Urban Ventures", Rating: 5,
				Review: "Exceptional quality and transparent pricing. The team understood our minimalist requirements perfectly."},
			{Name: "Yuki Tanaka", Company: "Zen Studios", Rating: 5,
				Review: "The perfect balance of brutalism and elegance. Our conversion rates increased by 300% after launch."},
		},
		FAQ: []FAQ{
			{Question: "How fast can you deliver my website?",
				Answer: "Most projects are completed within 48-72 hours. Simple landing pages can be delivered in as little as 24 hours."},
			{Question: "What's included in the fixed price?",
				Answer: "Design, development, mobile optimization, basic SEO, hosting setup, and 30 days of support are all included in our fixed pricing."},
			{Question: "Do you provide ongoing maintenance?",
				Answer: "Yes! We offer monthly maintenance packages starting at $50/month including updates, security monitoring, and content changes."},
			{Question: "Can you work with my existing brand?",
				Answer: "Absolutely. We can work with your existing brand guidelines or help create new branding that aligns with your vision."},
			{Question: "What if I need revisions?",
				Answer: "We include 2 rounds of revisions in all packages. Additional revisions are available at $50 per round."},
			{Question: "Do you build e-commerce websites?",
				Answer: "Yes, our Custom package includes full e-commerce functionality with payment processing, inventory management, and more."},
		},
		CTA: CTA{
			Headline:    "Launch Your Website",
			Subheadline: "Tomorrow, from $300",
			Action:      "START PROJECT",
		},
	}
}
