package ai

import (
	"fmt"

	"github.com/a3tai/cardkit/internal/units"
)

// LayoutPrompt asks for the fields plus a positioned, styled layout.
const LayoutPrompt = `あなたは名刺のOCRとレイアウト解析の専門家です。名刺の文字情報と、各テキストの位置・書体を読み取り、以下のJSON形式のみで返してください。読み取れないフィールドは空文字にしてください。

- 名刺サイズは横91mm × 縦55mmを基準とします。
- 座標の原点は左上、単位はミリメートル(mm)です。
- 文字サイズはポイント(pt)で、会社名は8〜12pt、氏名は12〜18pt、その他は6〜9ptが目安です。
- すべての要素に fontFamily, fontSize_pt, fontWeight (normal|bold), fontStyle (normal|italic), color (#RRGGBB), textAlign (left|center|right) を必ず含めてください。
- fieldKey は company, name, title, email, phone, address, website のいずれか、該当しない装飾文字は空文字です。

{
  "card_fields": {
    "company": "", "name": "", "title": "", "email": "",
    "phone": "", "address": "", "website": ""
  },
  "layout": {
    "width_mm": 91,
    "height_mm": 55,
    "elements": [
      {
        "fieldKey": "company", "text": "会社名",
        "x_mm": 5, "y_mm": 8, "width_mm": 40, "height_mm": 5,
        "fontFamily": "NotoSansJP", "fontSize_pt": 10,
        "fontWeight": "bold", "fontStyle": "normal",
        "color": "#000000", "textAlign": "left"
      }
    ]
  }
}`

// TextPrompt asks to sort already extracted text into the seven fields.
const TextPrompt = `あなたは名刺データ整理の専門家です。名刺から抽出されたテキストを読み、以下のJSON形式のみで返してください。該当する情報がないフィールドは空文字にしてください。

{
  "company": "会社名",
  "name": "氏名",
  "title": "役職",
  "email": "メールアドレス",
  "phone": "電話番号",
  "address": "住所",
  "website": "WebサイトURL"
}`

// ImageInstruction is the user text sent alongside a card image.
const ImageInstruction = "この名刺の情報を読み取ってください。"

// DocumentInstruction builds the user text for a document whose text layer
// was extracted locally.
func DocumentInstruction(text string, widthMM, heightMM float64) string {
	return fmt.Sprintf("この名刺PDFのページサイズは %s × %s mm です。抽出されたテキスト:\n%s",
		units.Format(widthMM), units.Format(heightMM), text)
}

// TextInstruction builds the user text for plain text normalization.
func TextInstruction(text string) string {
	return "以下のテキストを整理してください。\n" + text
}
