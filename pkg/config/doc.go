/*
Package config manages the publisher settings.

	        +-------------+
	        |  Settings   |
	        +------+------+
	               |
	   +-----------+-----------+
	   |           |           |
	+--+---+   +---+---+   +---+--+
	| YAML |   |  HCL  |   | JSON |
	+------+   +-------+   +------+

🎯 Purpose:
- Loads settings from .yaml, .hcl or .json (the plugin data.json shape)
- Merges whatever is set over the defaults
- Lets NOTEPUB_* variables (and a vault .env) override the two path settings

🔄 Flow:
1. LoadDotEnv reads <vault>/.env
2. Load parses the settings file (missing file = defaults)
3. ApplyEnv applies overrides and re-validates

Settings are read-only once a publish run starts.
*/
package config
