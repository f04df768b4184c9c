// Package fuzztests houses Go fuzz harnesses for the text-facing parts of
// lintfix: suppression directives, diagnostic codes, SARIF reports and the
// replacement engine. They guard against panics on arbitrary input and check
// that canonical directive output parses back to the same rules.
//
// Не делает: генерацию корпусов, запись файлов, запуск внешнего линтера.

package fuzztests
