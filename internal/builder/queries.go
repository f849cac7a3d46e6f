package builder

// queryText holds the tree-sitter query source for each supported
// language's definitions and references. Capture names follow
// "<kind>.def" / "<kind>.name" for definitions and "<kind>.target" for
// references, so the walker can group captures by match without any
// per-language special casing.
var queryText = map[Language]string{
	LangTypeScript: `
		(function_declaration name: (identifier) @function.name) @function.def
		(class_declaration name: (type_identifier) @class.name) @class.def
		(method_definition name: (property_identifier) @function.name) @function.def
		(import_statement source: (string) @import.name) @import.def
		(call_expression function: (identifier) @call.target) @call.ref
		(call_expression function: (member_expression property: (property_identifier) @call.target)) @call.ref
		(class_heritage (extends_clause value: (identifier) @extends.target)) @extends.ref
		(class_heritage (implements_clause (type_identifier) @implements.target)) @implements.ref
	`,
	LangTSX: `
		(function_declaration name: (identifier) @function.name) @function.def
		(class_declaration name: (type_identifier) @class.name) @class.def
		(method_definition name: (property_identifier) @function.name) @function.def
		(import_statement source: (string) @import.name) @import.def
		(call_expression function: (identifier) @call.target) @call.ref
		(call_expression function: (member_expression property: (property_identifier) @call.target)) @call.ref
		(class_heritage (extends_clause value: (identifier) @extends.target)) @extends.ref
	`,
	LangJavaScript: `
		(function_declaration name: (identifier) @function.name) @function.def
		(class_declaration name: (identifier) @class.name) @class.def
		(method_definition name: (property_identifier) @function.name) @function.def
		(variable_declarator name: (identifier) value: (arrow_function)) @function.def
		(import_statement source: (string) @import.name) @import.def
		(call_expression function: (identifier) @call.target) @call.ref
		(call_expression function: (member_expression property: (property_identifier) @call.target)) @call.ref
		(class_heritage (extends_clause value: (identifier) @extends.target)) @extends.ref
	`,
	LangPython: `
		(function_definition name: (identifier) @function.name) @function.def
		(class_definition name: (identifier) @class.name) @class.def
		(import_from_statement module_name: (dotted_name) @import.name) @import.def
		(import_statement name: (dotted_name) @import.name) @import.def
		(call function: (identifier) @call.target) @call.ref
		(call function: (attribute attribute: (identifier) @call.target)) @call.ref
		(class_definition superclasses: (argument_list (identifier) @extends.target)) @extends.ref
	`,
}
