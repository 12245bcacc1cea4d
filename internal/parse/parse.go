package parse

import (
	"regexp"
	"strconv"
	"strings"

	"prozon/internal"
	"prozon/internal/util"
)

// Marker phrases are fixed by the supplier's order layout.
var (
	reOrderNumber  = regexp.MustCompile(`#(LI\d+)`)
	reOrderRef     = regexp.MustCompile(`Réf\. de commande[^\n]*\n\s*(\w+)`)
	reDeliveryDate = regexp.MustCompile(`LIVRAISON\s+(\d{2}/\d{2}/\d{4})`)
	reAddressBlock = regexp.MustCompile(`(?s)Adresse de livraison\s+(.*?)(?:Réf\. de commande|$)`)
	reItemsBlock   = regexp.MustCompile(`(?s)Référence\s+Produit\s+Qté\s+(.*?)(?:Le destinataire|$)`)
	reItemCode     = regexp.MustCompile(`\d{5}-\d+`)
	reTrailingQty  = regexp.MustCompile(`(\d+)\s*$`)
)

// ParseOrder recovers the order fields from raw document text. Fields are
// independent: a missing marker leaves its field empty and never fails the
// parse.
func ParseOrder(text string) internal.Order {
	order := internal.Order{Items: []internal.LineItem{}}

	if m := reOrderNumber.FindStringSubmatch(text); m != nil {
		order.Number = m[1]
	}
	if m := reOrderRef.FindStringSubmatch(text); m != nil {
		order.Reference = m[1]
	}
	if m := reDeliveryDate.FindStringSubmatch(text); m != nil {
		order.Date = m[1]
	}
	if m := reAddressBlock.FindStringSubmatch(text); m != nil {
		order.Address = ResolveAddress(m[1])
	}
	if m := reItemsBlock.FindStringSubmatch(text); m != nil {
		order.Items = parseItems(m[1])
	}

	return order
}

// parseItems slices the item section at each supplier code. An item runs
// from its code to the next code or the end of the section. The trailing
// digit run is the quantity; without one the quantity defaults to 1.
func parseItems(section string) []internal.LineItem {
	codes := reItemCode.FindAllStringIndex(section, -1)
	items := make([]internal.LineItem, 0, len(codes))

	for i, loc := range codes {
		end := len(section)
		if i+1 < len(codes) {
			end = codes[i+1][0]
		}
		body := strings.TrimSpace(section[loc[1]:end])

		item := internal.LineItem{
			ProzonRef: section[loc[0]:loc[1]],
			Quantity:  1,
		}
		if qm := reTrailingQty.FindStringSubmatchIndex(body); qm != nil {
			if qty, err := strconv.Atoi(body[qm[2]:qm[3]]); err == nil {
				item.Quantity = qty
				body = body[:qm[2]]
			}
		}
		item.Description = util.NormalizeSpaces(body)
		items = append(items, item)
	}

	return items
}
