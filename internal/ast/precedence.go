package ast

// Binding strength of expressions, loosest first. Printers use it to decide
// where parentheses are needed since the tree does not record them.
const (
	PrecAssign = iota + 1
	PrecConditional
	PrecOr
	PrecAnd
	PrecEquality
	PrecRelational
	PrecAdditive
	PrecMultiplicative
	PrecUnary
	PrecPostfix
	PrecPrimary
)

// BinaryPrecedence returns the precedence of a binary or logical operator.
func BinaryPrecedence(op string) int {
	switch op {
	case "||":
		return PrecOr
	case "&&":
		return PrecAnd
	case "==", "!=":
		return PrecEquality
	case "<", "<=", ">", ">=":
		return PrecRelational
	case "+", "-":
		return PrecAdditive
	case "*", "/", "%":
		return PrecMultiplicative
	}
	return PrecPrimary
}

// Precedence returns how tightly e binds as an operand.
func Precedence(e Expr) int {
	switch e := e.(type) {
	case *AssignExpr, *ArrowFunc:
		return PrecAssign
	case *ConditionalExpr:
		return PrecConditional
	case *LogicalExpr:
		return BinaryPrecedence(e.Op)
	case *BinaryExpr:
		return BinaryPrecedence(e.Op)
	case *UnaryExpr, *AwaitExpr:
		return PrecUnary
	case *CallExpr, *MemberExpr, *Element:
		return PrecPostfix
	}
	return PrecPrimary
}
