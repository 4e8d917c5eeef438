// Package printer turns a (possibly lowered) syntax tree back into
// JavaScript text.
//
// Назначение: печать выражений с учётом приоритетов операторов, пролог
// helper-ов файла и scoped helper-ов в начале блоков, синтетические
// комментарии и константы из side table.
// Не делает: source maps, минификацию, сохранение исходного форматирования.
// Зависимости: internal/ast, internal/emitnode, internal/helpers.
package printer
