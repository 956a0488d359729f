package view

import (
	"github.com/hitoshi/staffbook/internal/model"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func indexPage(d IndexData) Node {
	var content Node
	if len(d.Employees) == 0 {
		content = P(Class("empty"), Text("No employees yet."))
	} else {
		content = Table(
			THead(Tr(
				Th(Text("Name")),
				Th(Text("Email")),
				Th(Text("Position")),
				Th(Text("Department")),
				Th(Text("Actions")),
			)),
			TBody(Map(d.Employees, employeeRow)),
		)
	}

	return page("Employees", d.Identity, d.CSRFToken,
		H1(Text("Employees")),
		P(A(Href("/employees/add"), Class("add-employee"), Text("Add employee"))),
		content,
	)
}

func employeeRow(e *model.Employee) Node {
	return Tr(
		Data("id", e.ID),
		Td(Class("name"), Text(e.Name)),
		Td(Class("email"), Text(e.Email)),
		Td(Class("position"), Text(e.Position)),
		Td(Class("department"), Text(e.Department)),
		Td(
			A(Href("/employees/edit/"+e.ID), Class("edit"), Text("Edit")),
			Text(" "),
			A(Href("/employees/delete/"+e.ID), Class("delete"), Text("Delete")),
		),
	)
}

func addPage(d FormData) Node {
	return employeeForm("Add employee", "/employees", "Create", d)
}

func editPage(d FormData) Node {
	return employeeForm("Edit employee", "/employees/edit/"+d.Employee.ID, "Update", d)
}

func employeeForm(title, action, submit string, d FormData) Node {
	return page(title, d.Identity, d.CSRFToken,
		H1(Text(title)),
		errorList(d.Errors),
		Form(
			Class("stack"),
			Method("post"),
			Action(action),
			csrfField(d.CSRFToken),
			textField("Name", "name", "text", d.Employee.Name),
			textField("Email", "email", "email", d.Employee.Email),
			textField("Position", "position", "text", d.Employee.Position),
			textField("Department", "department", "text", d.Employee.Department),
			Div(
				Class("actions"),
				Button(Type("submit"), Text(submit)),
				A(Href("/employees"), Text("Cancel")),
			),
		),
	)
}
