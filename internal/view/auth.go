package view

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func loginPage(d AuthFormData) Node {
	return page("Log in", nil, d.CSRFToken,
		H1(Text("Log in")),
		authMessages(d),
		Form(
			Class("stack"),
			Method("post"),
			Action("/auth/login"),
			csrfField(d.CSRFToken),
			textField("Email", "email", "email", d.Email),
			textField("Password", "password", "password", ""),
			Div(Class("actions"), Button(Type("submit"), Text("Log in"))),
		),
		P(Text("No account? "), A(Href("/auth/register"), Text("Register"))),
	)
}

func registerPage(d AuthFormData) Node {
	return page("Register", nil, d.CSRFToken,
		H1(Text("Register")),
		authMessages(d),
		Form(
			Class("stack"),
			Method("post"),
			Action("/auth/register"),
			csrfField(d.CSRFToken),
			textField("Name", "name", "text", d.Name),
			textField("Email", "email", "email", d.Email),
			textField("Password", "password", "password", ""),
			textField("Confirm password", "password2", "password", ""),
			Div(Class("actions"), Button(Type("submit"), Text("Register"))),
		),
		P(Text("Already registered? "), A(Href("/auth/login"), Text("Log in"))),
	)
}

func authMessages(d AuthFormData) Node {
	var notice, message Node
	if d.Notice != "" {
		notice = P(Class("notice"), Text(d.Notice))
	}
	if d.Message != "" {
		message = P(Class("errors message"), Text(d.Message))
	}
	return Group{notice, message, errorList(d.Errors)}
}
