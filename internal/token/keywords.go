package token

var keywords = map[string]Kind{
	"module":   KwModule,
	"let":      KwLet,
	"val":      KwVal,
	"func":     KwFunc,
	"i8":       TyI8,
	"u8":       TyU8,
	"i16":      TyI16,
	"u16":      TyU16,
	"i32":      TyI32,
	"u32":      TyU32,
	"i64":      TyI64,
	"u64":      TyU64,
	"f32":      TyF32,
	"f64":      TyF64,
	"bool":     TyBool,
	"char":     TyChar,
	"str":      TyStr,
	"true":     TrueLit,
	"false":    FalseLit,
	"and":      KwAnd,
	"or":       KwOr,
	"not":      KwNot,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"return":   KwReturn,
	"break":    KwBreak,
	"continue": KwContinue,
}

var keywordText = func() map[Kind]string {
	out := make(map[Kind]string, len(keywords))
	for w, k := range keywords {
		out[k] = w
	}
	return out
}()

// KeywordText returns the reserved word spelled by k.
func KeywordText(k Kind) (string, bool) {
	w, ok := keywordText[k]
	return w, ok
}

// LookupKeyword возвращает тип и bool если это зарезервированное слово.
// Регистрозависимо: только lowercase версии распознаются.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// Keywords returns a copy of the reserved word table.
func Keywords() map[string]Kind {
	out := make(map[string]Kind, len(keywords))
	for w, k := range keywords {
		out[w] = k
	}
	return out
}
