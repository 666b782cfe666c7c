package scraper

// rawCard is what the page script reads from one property card. All
// interpretation happens in normalizeCard.
type rawCard struct {
	Title   string `json:"title"`
	Price   string `json:"price"`
	Score   string `json:"score"`
	Src     string `json:"src"`
	Srcset  string `json:"srcset"`
	Href    string `json:"href"`
	Address string `json:"address"`
}

type rawDetails struct {
	DescriptionCandidates []string `json:"descriptionCandidates"`
	Paragraphs            []string `json:"paragraphs"`
	Popular               []string `json:"popular"`
	Checklist             string   `json:"checklist"`
	Rooms                 []string `json:"rooms"`
	CheckIn               string   `json:"checkIn"`
	CheckOut              string   `json:"checkOut"`
	Images                []string `json:"images"`
}

const extractCardsJS = `(() => {
  const text = (el) => (el && el.textContent ? el.textContent.trim() : '');
  const attr = (el, name) => (el ? el.getAttribute(name) || '' : '');
  return Array.from(document.querySelectorAll('[data-testid="property-card"]')).map((card) => {
    const image = card.querySelector('[data-testid="image"]');
    const link = card.querySelector('a[data-testid="title-link"]') || card.querySelector('a');
    return {
      title: text(card.querySelector('[data-testid="title"]')),
      price: text(card.querySelector('[data-testid="price-and-discounted-price"]')),
      score: text(card.querySelector('[data-testid="review-score"]')),
      src: attr(image, 'src'),
      srcset: attr(image, 'srcset'),
      href: attr(link, 'href'),
      address: text(card.querySelector('[data-testid="address"]')),
    };
  });
})()`

const extractDetailsJS = `(() => {
  const text = (el) => (el && el.textContent ? el.textContent : '');
  const all = (sel) => Array.from(document.querySelectorAll(sel));
  return {
    descriptionCandidates: [
      '[data-testid="property-section-description-content"]',
      '#property_description_content',
      '.hotel_description_wrapper_exp',
      '.hp_desc_main_content',
    ].map((sel) => text(document.querySelector(sel))),
    paragraphs: all('p').map(text).filter((t) => t.length > 100).slice(0, 20),
    popular: all('[data-testid="property-most-popular-facilities-wrapper"] li, .bui-list__item, .hotel-facilities__list li').map((el) => text(el).trim()),
    checklist: text(document.querySelector('.facilitiesChecklist')),
    rooms: all('#hprt-table tbody tr, [data-testid="room-table"] tr')
      .map((row) => text(row.querySelector('.hprt-roomtype-link, [data-testid="room-name"]')))
      .filter((t) => t),
    checkIn: text(document.querySelector('#checkin_policy, [data-testid="checkin-policy"]')),
    checkOut: text(document.querySelector('#checkout_policy, [data-testid="checkout-policy"]')),
    images: all('.bh-photo-grid-item img, .gallery-side-reviews-wrapper img, [data-testid="gallery-image"], #hotel_main_content img')
      .map((img) => img.src || ''),
  };
})()`
