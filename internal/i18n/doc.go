// Package i18n provides the application text catalog in English and
// Portuguese. The download pipeline emits already localized log and status
// lines, so the catalog lives outside the UI package.
package i18n
