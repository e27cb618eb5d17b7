package crawler

import (
	"testing"
)

const listPageHTML = `
<html><body>
<table class="tbl_list">
<thead><tr><th>번호</th><th>공고명</th><th>지역</th><th>게시일</th></tr></thead>
<tbody>
<tr>
  <td>120</td>
  <td><a href="javascript:void(0)" onclick="fn_view('2026001','01','55')">행복주택 입주자 모집공고</a></td>
  <td>서울</td>
  <td>2026-08-01</td>
</tr>
<tr>
  <td>119</td>
  <td><a href="/notice/view.do?id=2025990">국민임대 예비자 모집</a></td>
  <td>경기</td>
  <td>2026-07-28</td>
</tr>
</tbody>
</table>
<div class="paging">
  <a href="?pageIndex=1" class="on">1</a>
  <a href="?pageIndex=2">2</a>
  <a href="?pageIndex=2" class="btn next">다음</a>
</div>
</body></html>`

func TestParseListPage(t *testing.T) {
	anns, hasNext, err := ParseListPage(listPageHTML, "https://apply.lh.or.kr/list.do")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(anns) != 2 {
		t.Fatalf("expected 2 announcements, got %d", len(anns))
	}

	first := anns[0]
	if first.Title != "행복주택 입주자 모집공고" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.ID != "2026001" {
		t.Errorf("expected ID from the javascript payload, got %q", first.ID)
	}
	if first.payload.Get("panId") != "2026001" || first.payload.Get("panDtlSeq") != "01" || first.payload.Get("notiSeq") != "55" {
		t.Errorf("unexpected payload %v", first.payload)
	}
	if first.Fields["col2"] != "서울" {
		t.Errorf("expected region column captured, got %q", first.Fields["col2"])
	}

	second := anns[1]
	if second.DetailURL != "https://apply.lh.or.kr/notice/view.do?id=2025990" {
		t.Errorf("expected resolved detail url, got %q", second.DetailURL)
	}

	if !hasNext {
		t.Error("expected pagination to continue")
	}
}

func TestParseListPage_LastPage(t *testing.T) {
	html := `
<html><body>
<table><tbody>
<tr><td><a href="/view.do?id=1">공고</a></td></tr>
</tbody></table>
<div class="paging"><a href="#" class="next disabled">다음</a></div>
</body></html>`
	_, hasNext, err := ParseListPage(html, "https://example.com/list.do")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasNext {
		t.Error("expected disabled next control to end pagination")
	}
}

func TestResolveDetailTarget(t *testing.T) {
	form, ok := resolveDetailTarget(`fn_goDetail('PAN123', '02', '7', '44')`)
	if !ok {
		t.Fatal("expected the javascript call to parse")
	}
	want := map[string]string{
		"panId":     "PAN123",
		"panDtlSeq": "02",
		"notiSeq":   "7",
		"bbsSeq":    "44",
	}
	for k, v := range want {
		if form.Get(k) != v {
			t.Errorf("expected %s=%q, got %q", k, v, form.Get(k))
		}
	}
}

func TestResolveDetailTarget_NotACall(t *testing.T) {
	if _, ok := resolveDetailTarget("#none"); ok {
		t.Error("expected plain fragment not to parse as a detail target")
	}
	if _, ok := resolveDetailTarget("fn_view()"); ok {
		t.Error("expected an empty argument list not to parse")
	}
}

func TestParseAttachments(t *testing.T) {
	html := `
<html><body>
<div class="file_list">
  <a href="/files/announce_2026001.pdf">공고문.pdf</a>
  <a href="/files/floorplan.PDF">평면도</a>
  <a href="/files/announce_2026001.pdf">공고문.pdf</a>
  <a href="/files/terms.hwp">약관.hwp</a>
</div>
</body></html>`
	atts, err := ParseAttachments(html, "https://apply.lh.or.kr/view.do")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(atts) != 2 {
		t.Fatalf("expected 2 unique pdf attachments, got %d", len(atts))
	}
	if atts[0].URL != "https://apply.lh.or.kr/files/announce_2026001.pdf" {
		t.Errorf("unexpected url %q", atts[0].URL)
	}
	if atts[0].Name != "공고문.pdf" {
		t.Errorf("unexpected name %q", atts[0].Name)
	}
}

func TestSlug(t *testing.T) {
	ann := Announcement{Title: "행복주택 입주자 모집공고 (2026/08)"}
	got := ann.Slug()
	want := "행복주택_입주자_모집공고_202608"
	if got != want {
		t.Errorf("expected slug %q, got %q", want, got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"공고문.pdf":          "공고문.pdf",
		"a/b\\c:d.pdf":      "a_b_c_d.pdf",
		"  spaced.pdf  ":    "spaced.pdf",
		"..":                "attachment.pdf",
		"report|draft?.pdf": "report_draft_.pdf",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
