package query

// Links는 페이지 결과의 이전/다음 페이지 번호입니다
type Links struct {
	Next     *int
	Previous *int
}

// PageLinks는 전체 개수와 페이지 윈도우만으로 이전/다음 페이지를 계산합니다.
// next는 skip+limit < total일 때만, previous는 page > 1일 때만 존재합니다.
func PageLinks(total int64, q PaginatedQuery) Links {
	var links Links
	page := q.Page()
	if q.Skip()+q.Limit() < total {
		next := page + 1
		links.Next = &next
	}
	if page > 1 {
		prev := page - 1
		links.Previous = &prev
	}
	return links
}
