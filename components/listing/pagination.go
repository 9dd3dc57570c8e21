package listing

// TotalPages returns max(1, ceil(items/pageSize)).
func TotalPages(items, pageSize int) int {
	if pageSize <= 0 || items <= 0 {
		return 1
	}
	return (items + pageSize - 1) / pageSize
}

// Window computes the page buttons shown for the given position. The window
// is centred on current when possible and clamped at both ends. With the
// ellipsis policy the first and last pages are always reachable and gaps are
// marked with EllipsisItem.
func Window(totalPages, current int, policy PaginationPolicy) []PageItem {
	if totalPages < 1 {
		totalPages = 1
	}
	current = clamp(current, 1, totalPages)
	width := policy.Width
	if width <= 0 {
		width = defaultWindowWidth
	}

	start := current - width/2
	if start < 1 {
		start = 1
	}
	end := start + width - 1
	if end > totalPages {
		end = totalPages
		start = max(1, end-width+1)
	}

	items := make([]PageItem, 0, width+4)
	if policy.Ellipsis && start > 1 {
		items = append(items, PageNumber(1))
		if start > 2 {
			items = append(items, EllipsisItem)
		}
	}
	for p := start; p <= end; p++ {
		items = append(items, PageNumber(p))
	}
	if policy.Ellipsis && end < totalPages {
		if end < totalPages-1 {
			items = append(items, EllipsisItem)
		}
		items = append(items, PageNumber(totalPages))
	}
	return items
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
