package emitter

import "fmt"

var cypressDialect = dialect{
	Format: Format{Key: Cypress, Label: "Cypress (JS)", Extension: ".cy.js"},
	quote:  jsString,
	indent: "    ",
	prologue: func(q quoter, startURL string) []string {
		return []string{
			`describe("Recorded Test", () => {`,
			`  it("runs", () => {`,
			fmt.Sprintf("    cy.visit(%s);", q(startURL)),
		}
	},
	pageWait: func(q quoter) []string {
		return []string{`cy.document().its("readyState").should("eq", "complete");`}
	},
	click: func(q quoter, target string) []string {
		return []string{fmt.Sprintf("cy.get(%s).should(\"be.visible\").click();", q(target))}
	},
	fill: func(q quoter, target, value string) []string {
		// cy.type rejects an empty string and parses {braces} as key sequences.
		if value == "" {
			return []string{fmt.Sprintf("cy.get(%s).clear();", q(target))}
		}
		return []string{
			fmt.Sprintf("cy.get(%s).clear().type(%s, { parseSpecialCharSequences: false });", q(target), q(value)),
		}
	},
	epilogue: []string{
		"  });",
		"});",
	},
}
