package emitter

import "fmt"

var playwrightPythonDialect = dialect{
	Format: Format{Key: PlaywrightPython, Label: "Playwright (Python)", Extension: ".py"},
	quote:  pythonString,
	indent: "        ",
	prologue: func(q quoter, startURL string) []string {
		return []string{
			"from playwright.sync_api import sync_playwright",
			"",
			"",
			"def run():",
			"    with sync_playwright() as p:",
			"        browser = p.chromium.launch(headless=False)",
			"        page = browser.new_page()",
			fmt.Sprintf("        page.goto(%s)", q(startURL)),
		}
	},
	pageWait: func(q quoter) []string {
		return []string{`page.wait_for_load_state("load")`}
	},
	click: func(q quoter, target string) []string {
		return []string{fmt.Sprintf("page.click(%s)", q(target))}
	},
	fill: func(q quoter, target, value string) []string {
		return []string{fmt.Sprintf("page.fill(%s, %s)", q(target), q(value))}
	},
	epilogue: []string{
		"        browser.close()",
		"",
		"",
		`if __name__ == "__main__":`,
		"    run()",
	},
}

var playwrightJSDialect = dialect{
	Format: Format{Key: PlaywrightJS, Label: "Playwright (JS)", Extension: ".js"},
	quote:  jsString,
	indent: "  ",
	prologue: func(q quoter, startURL string) []string {
		return []string{
			`const { chromium } = require("playwright");`,
			"",
			"(async () => {",
			"  const browser = await chromium.launch({ headless: false });",
			"  const page = await browser.newPage();",
			fmt.Sprintf("  await page.goto(%s);", q(startURL)),
		}
	},
	pageWait: func(q quoter) []string {
		return []string{`await page.waitForLoadState("load");`}
	},
	click: func(q quoter, target string) []string {
		return []string{fmt.Sprintf("await page.click(%s);", q(target))}
	},
	fill: func(q quoter, target, value string) []string {
		return []string{fmt.Sprintf("await page.fill(%s, %s);", q(target), q(value))}
	},
	epilogue: []string{
		"  await browser.close();",
		"})();",
	},
}
