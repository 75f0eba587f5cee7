package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// maxMessageLen はHTMLエラーページの本文から採用する最大文字数です
// サーバーが返したメッセージ（JSON・プレーンテキスト）は切り詰めません
const maxMessageLen = 300

// messageFromBody はエラーレスポンスの本文からサーバーのメッセージを取り出します
// 優先順位: JSON の error -> message -> detail、JSON文字列、HTMLの<title>/本文、プレーンテキスト
// 何も取り出せない場合は空文字を返します
func messageFromBody(contentType string, body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	if strings.Contains(contentType, "json") || body[0] == '{' || body[0] == '"' {
		if msg, ok := messageFromJSON(body); ok {
			return msg
		}
	}

	if strings.Contains(contentType, "html") || body[0] == '<' {
		return messageFromHTML(body)
	}

	return collapseSpaces(string(body))
}

// messageFromJSON はJSON本文からメッセージを取り出します
// JSONとして解釈できた場合は ok=true を返します（メッセージが空でも）
func messageFromJSON(body []byte) (string, bool) {
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return strings.TrimSpace(s), true
	}

	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return "", false
	}
	for _, key := range []string{"error", "message", "detail"} {
		if v, ok := m[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", true
}

// messageFromHTML はリバースプロキシなどが返すHTMLのエラーページからメッセージを取り出します
func messageFromHTML(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	if title := collapseSpaces(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := collapseSpaces(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return truncate(collapseSpaces(doc.Find("body").Text()))
}

// PlainText は出品物の説明文に含まれるHTMLをプレーンテキストに変換します
// HTMLでない文字列はそのまま返します
func PlainText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	// 段落・改行は改行として残します
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6").AppendHtml("\n")

	var lines []string
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		if line = collapseSpaces(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxMessageLen]) + "..."
}
