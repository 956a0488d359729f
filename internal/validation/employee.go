package validation

// EmployeeSchema は従業員フォームの検証スキーマ。
var EmployeeSchema = Schema{
	{Field: "name", Label: "Name", Tags: "required,max=100"},
	{Field: "email", Label: "Email", Tags: "required,email,max=254"},
	{Field: "position", Label: "Position", Tags: "required,max=100"},
	{Field: "department", Label: "Department", Tags: "required,max=100"},
}

// RegisterSchema はユーザー登録フォームの検証スキーマ。
var RegisterSchema = Schema{
	{Field: "name", Label: "Name", Tags: "required,max=100"},
	{Field: "email", Label: "Email", Tags: "required,email,max=254"},
	{Field: "password", Label: "Password", Tags: "required,min=6,max=72"},
	{Field: "password2", Label: "Password confirmation", Tags: "eqfield", EqualTo: "password"},
}

// LoginSchema はログインフォームの検証スキーマ。
var LoginSchema = Schema{
	{Field: "email", Label: "Email", Tags: "required,email"},
	{Field: "password", Label: "Password", Tags: "required"},
}
