// Package fuzztests houses Go fuzz harnesses for the Vela lexer. Its goal is
// to smoke test robustness on arbitrary inputs: no panics, full tiling of the
// input by tokens and trivia, and identical output across repeated scans.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet и
// прогоняют их через лексер.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/diag, internal/testkit.

package fuzztests
