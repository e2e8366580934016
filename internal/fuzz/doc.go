// Package fuzztests houses Go fuzz harnesses that push arbitrary tree dumps
// through the whole checking pipeline (decode -> bind -> fold -> check ->
// poly -> locality). Its goal is to smoke test robustness: any input must end
// in a verdict, never a panic or a hang.
//
// Назначение: загружать байты в FileSet и прогонять их через driver.Compile.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/driver, internal/treeio.

package fuzztests
