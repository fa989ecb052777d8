package listview

// PageInfo is the paging state reported by the backend for one list response.
type PageInfo struct {
	Page  int
	Pages int
	Total int
}

// NewPageInfo clamps what the backend reported: at least one page, and the
// current page never below 1.
func NewPageInfo(page, pages, total int) PageInfo {
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{Page: page, Pages: pages, Total: total}
}

func (p PageInfo) HasPrev() bool {
	return p.Page > 1
}

// HasNext is false once page reaches pages. Going past the end is only
// prevented here, by disabling the control; the backend does not enforce it.
func (p PageInfo) HasNext() bool {
	return p.Page < p.Pages
}

func (p PageInfo) PrevPage() int {
	if !p.HasPrev() {
		return p.Page
	}
	return p.Page - 1
}

func (p PageInfo) NextPage() int {
	if !p.HasNext() {
		return p.Page
	}
	return p.Page + 1
}

// Pager bundles what a template needs to draw paging controls.
type Pager struct {
	PageInfo
	PrevHref string
	NextHref string
}

func NewPager(path string, params Params, info PageInfo) Pager {
	return Pager{
		PageInfo: info,
		PrevHref: params.WithPage(info.PrevPage()).Href(path),
		NextHref: params.WithPage(info.NextPage()).Href(path),
	}
}
