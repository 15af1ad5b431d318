package diagfmt

import (
	"io"
	"tschecker/internal/diag"
	"tschecker/internal/source"
)

// Sarif принимает диагностики и метаданные запуска, но ничего не пишет в w:
// вывод в формате SARIF не реализован.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) {
	// TODO: реализовать SARIF форматирование
	_ = w
	_ = bag
	_ = fs
	_ = meta
}
