package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// KwModule represents the 'module' keyword.
	KwModule
	// KwLet represents the 'let' keyword.
	KwLet
	// KwVal represents the 'val' keyword.
	KwVal
	// KwFunc represents the 'func' function definition keyword.
	KwFunc

	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
	LParen   // (
	RParen   // )

	TyI8   // i8
	TyU8   // u8
	TyI16  // i16
	TyU16  // u16
	TyI32  // i32
	TyU32  // u32
	TyI64  // i64
	TyU64  // u64
	TyF32  // f32
	TyF64  // f64
	TyBool // bool
	TyChar // char
	TyStr  // str

	// TrueLit represents the 'true' literal.
	TrueLit
	// FalseLit represents the 'false' literal.
	FalseLit
	// CharLit represents a single-quoted character literal.
	CharLit
	// FloatLit represents a floating-point literal (digits '.' digits).
	FloatLit
	// IntLit represents an integer literal.
	IntLit

	EqEq   // ==
	BangEq // !=
	LtEq   // <=
	GtEq   // >=
	Assign // =
	Lt     // <
	Gt     // >

	Pointer      // ^
	PointerDeref // *
	Amp          // &
	Colon        // :
	Semicolon    // ;
	Comma        // ,
	Dot          // .
	Arrow        // ->

	Plus     // +
	Minus    // -
	Multiply // * (shadowed by PointerDeref in the lexer)
	Slash    // /
	Percent  // %

	KwAnd // and
	KwOr  // or
	KwNot // not

	KwIf       // if
	KwElse     // else
	KwWhile    // while
	KwFor      // for
	KwReturn   // return
	KwBreak    // break
	KwContinue // continue

	// Ident represents an identifier token.
	Ident

	// Comment is a line comment: '//' up to, not including, the newline.
	Comment
	// CommentBlock is a non-nesting '/* ... */' comment.
	CommentBlock
	// Newline is a single '\n'.
	Newline
	// Skip is a run of spaces, tabs and carriage returns.
	Skip

	kindCount
)

var kindNames = [...]string{
	Invalid:      "INVALID",
	EOF:          "EOF",
	KwModule:     "MODULE",
	KwLet:        "LET",
	KwVal:        "VAL",
	KwFunc:       "FUNCTION_DEF",
	LBrace:       "L_BRACE",
	RBrace:       "R_BRACE",
	LBracket:     "L_BRACKET",
	RBracket:     "R_BRACKET",
	LParen:       "L_PAREN",
	RParen:       "R_PAREN",
	TyI8:         "SIGNED_INT_8_TYPE",
	TyU8:         "UNSIGNED_INT_8_TYPE",
	TyI16:        "SIGNED_INT_16_TYPE",
	TyU16:        "UNSIGNED_INT_16_TYPE",
	TyI32:        "SIGNED_INT_32_TYPE",
	TyU32:        "UNSIGNED_INT_32_TYPE",
	TyI64:        "SIGNED_INT_64_TYPE",
	TyU64:        "UNSIGNED_INT_64_TYPE",
	TyF32:        "FLOAT_32_TYPE",
	TyF64:        "FLOAT_64_TYPE",
	TyBool:       "BOOL_TYPE",
	TyChar:       "CHAR_TYPE",
	TyStr:        "STRING_TYPE",
	TrueLit:      "TRUE_LITERAL",
	FalseLit:     "FALSE_LITERAL",
	CharLit:      "CHAR_LITERAL",
	FloatLit:     "FLOAT_LITERAL",
	IntLit:       "INTEGER_LITERAL",
	EqEq:         "EQ",
	BangEq:       "NEQ",
	LtEq:         "LTE",
	GtEq:         "GTE",
	Assign:       "ASSIGN",
	Lt:           "LT",
	Gt:           "GT",
	Pointer:      "POINTER",
	PointerDeref: "POINTER_DEREFERENCE",
	Amp:          "ADDRESS_OPERATOR",
	Colon:        "COLON",
	Semicolon:    "SIMI_COLON",
	Comma:        "COMMA",
	Dot:          "DOT",
	Arrow:        "ARROW",
	Plus:         "PLUS",
	Minus:        "MINUS",
	Multiply:     "MULTIPLY",
	Slash:        "DIVIDE",
	Percent:      "MODULO",
	KwAnd:        "AND",
	KwOr:         "OR",
	KwNot:        "NOT",
	KwIf:         "IF",
	KwElse:       "ELSE",
	KwWhile:      "WHILE",
	KwFor:        "FOR",
	KwReturn:     "RETURN",
	KwBreak:      "BREAK",
	KwContinue:   "CONTINUE",
	Ident:        "IDENTIFIER",
	Comment:      "COMMENT",
	CommentBlock: "COMMENT_BLOCK",
	Newline:      "NEWLINE",
	Skip:         "SKIP",
}

// String returns the canonical upper-case tag, e.g. FLOAT_64_TYPE.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "INVALID"
}

// MarshalText makes kinds render as their tag in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindByName is the inverse of Kind.String.
func KindByName(name string) (Kind, bool) {
	for k := Kind(0); k < kindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return Invalid, false
}

// Kinds returns every kind in declaration order, sentinels included.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) IsEOF() bool { return k == EOF }

// IsTrivia reports kinds that the lexer recognizes but never emits.
func (k Kind) IsTrivia() bool {
	switch k {
	case Comment, CommentBlock, Newline, Skip:
		return true
	default:
		return false
	}
}

// IsTypeName reports primitive type keywords.
func (k Kind) IsTypeName() bool {
	return k >= TyI8 && k <= TyStr
}

// IsKeyword reports reserved words: structural and control-flow keywords,
// type names, boolean literals and word operators.
func (k Kind) IsKeyword() bool {
	switch {
	case k >= KwModule && k <= KwFunc:
		return true
	case k.IsTypeName():
		return true
	case k == TrueLit || k == FalseLit:
		return true
	case k >= KwAnd && k <= KwContinue:
		return true
	default:
		return false
	}
}

// IsLiteral reports boolean, character and numeric literals.
func (k Kind) IsLiteral() bool {
	return k >= TrueLit && k <= IntLit
}

// IsOperator reports symbol-shaped operators and punctuation, brackets included.
func (k Kind) IsOperator() bool {
	switch {
	case k >= LBrace && k <= RParen:
		return true
	case k >= EqEq && k <= Percent:
		return true
	default:
		return false
	}
}
