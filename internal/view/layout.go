package view

import (
	"github.com/hitoshi/staffbook/internal/model"
	"github.com/hitoshi/staffbook/internal/validation"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const appName = "Staffbook"

const stylesheet = `
body { font-family: system-ui, sans-serif; margin: 0; color: #1f2328; background: #f6f8fa; }
header { display: flex; justify-content: space-between; align-items: center; padding: .75rem 1.5rem; background: #24292f; color: #fff; }
header a { color: #fff; text-decoration: none; font-weight: 600; }
header form { display: inline; }
main { max-width: 960px; margin: 1.5rem auto; padding: 0 1rem; }
table { width: 100%; border-collapse: collapse; background: #fff; }
th, td { padding: .5rem .75rem; border-bottom: 1px solid #d0d7de; text-align: left; }
form.stack label { display: block; margin-top: .75rem; font-weight: 600; }
form.stack input { width: 100%; padding: .4rem; box-sizing: border-box; }
.errors { color: #cf222e; }
.notice { color: #1a7f37; }
.actions { margin-top: 1rem; display: flex; gap: .5rem; }
`

// page は全ビュー共通のHTMLレイアウトを返す。
// identityがある場合はヘッダーにユーザー名とログアウトボタンを表示する。
func page(title string, identity *model.Identity, csrfToken string, body ...Node) Node {
	var menu Node
	if identity != nil {
		menu = userMenu(identity, csrfToken)
	}

	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(Text(title+" | "+appName)),
				StyleEl(Raw(stylesheet)),
			),
			Body(
				Header(
					A(Href("/employees"), Text(appName)),
					menu,
				),
				Main(Group(body)),
			),
		),
	)
}

func userMenu(identity *model.Identity, csrfToken string) Node {
	return Div(
		Class("user-menu"),
		Span(Text(identity.Name+" ")),
		Form(
			Method("post"),
			Action("/auth/logout"),
			csrfField(csrfToken),
			Button(Type("submit"), Text("Log out")),
		),
	)
}

// csrfField はCSRFトークンのhiddenフィールドを返す。
func csrfField(token string) Node {
	return Input(Type("hidden"), Name("csrf_token"), Value(token))
}

// errorList はバリデーションエラーの一覧を返す。エラーが無い場合は何も描画しない。
func errorList(errs []validation.FieldError) Node {
	if len(errs) == 0 {
		return nil
	}
	return Ul(
		Class("errors"),
		Map(errs, func(fe validation.FieldError) Node {
			return Li(Data("field", fe.Field), Text(fe.Message))
		}),
	)
}

// textField はラベル付きのテキスト入力欄を返す。
func textField(label, name, inputType, value string) Node {
	return Group{
		Label(For(name), Text(label)),
		Input(ID(name), Name(name), Type(inputType), Value(value)),
	}
}
