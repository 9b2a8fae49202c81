// Package nintendo holds static console data tables: System Menu title
// versions and banner language selection.
package nintendo

// sysMenuVersions maps a System Menu title version to its display string.
// Update channels shipped one title version per region per release, so the
// table is sparse. 544-610 are the Wii U's vWii menus.
var sysMenuVersions = map[uint16]string{
	0: "Prelaunch",
	1: "Prelaunch",
	2: "Prelaunch",

	33: "1.0U", 34: "1.0E", 64: "1.0J",
	97: "2.0U", 128: "2.0J", 130: "2.0E",
	162: "2.1E",
	192: "2.2J", 193: "2.2U", 194: "2.2E",
	224: "3.0J", 225: "3.0U", 226: "3.0E",
	256: "3.1J", 257: "3.1U", 258: "3.1E",
	288: "3.2J", 289: "3.2U", 290: "3.2E",
	326: "3.3K", 352: "3.3J", 353: "3.3U", 354: "3.3E",
	384: "3.4J", 385: "3.4U", 386: "3.4E",
	390: "3.5K",
	416: "4.0J", 417: "4.0U", 418: "4.0E",
	448: "4.1J", 449: "4.1U", 450: "4.1E", 454: "4.1K",
	480: "4.2J", 481: "4.2U", 482: "4.2E", 486: "4.2K",
	512: "4.3J", 513: "4.3U", 514: "4.3E", 518: "4.3K",

	544: "4.3J", 545: "4.3U", 546: "4.3E",
	608: "4.3J", 609: "4.3U", 610: "4.3E",
}

// SystemMenuVersion resolves a System Menu title version to its marketed
// version string, e.g. 513 to "4.3U".
func SystemMenuVersion(v uint16) (string, bool) {
	s, ok := sysMenuVersions[v]
	return s, ok
}

// SystemMenuRegionChar returns the fourth character of the System Menu
// version string, the region letter in "4.3U" and friends. Unknown versions
// yield 0.
func SystemMenuRegionChar(v uint16) byte {
	s, ok := sysMenuVersions[v]
	if !ok || len(s) < 4 {
		return 0
	}
	return s[3]
}
