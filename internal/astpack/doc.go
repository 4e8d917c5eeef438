// Package astpack reads and writes tree documents: the parsed form of one
// JavaScript file as handed over by an upstream parser.
//
// Назначение: превратить документ (.jspack в msgpack или .json) в узлы
// ast.Builder и обратно.
// Не делает: разбор исходного текста JavaScript, проверку семантики.
// Зависимости: ast, source, diag; msgpack для бинарного формата.
package astpack
