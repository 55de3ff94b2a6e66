// Package platform provides OS level helpers: base directory resolution,
// directory creation and opening folders in the system file manager.
package platform
