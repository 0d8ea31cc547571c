package emitter

import "fmt"

var seleniumDialect = dialect{
	Format: Format{Key: Selenium, Label: "Selenium (Python)", Extension: ".py"},
	quote:  pythonString,
	prologue: func(q quoter, startURL string) []string {
		return []string{
			"from selenium import webdriver",
			"from selenium.webdriver.common.by import By",
			"from selenium.webdriver.support.ui import WebDriverWait",
			"from selenium.webdriver.support import expected_conditions as EC",
			"import time",
			"",
			"driver = webdriver.Chrome()",
			"driver.maximize_window()",
			"wait = WebDriverWait(driver, 15)",
			fmt.Sprintf("driver.get(%s)", q(startURL)),
			"",
		}
	},
	pageWait: func(q quoter) []string {
		return []string{
			`wait.until(lambda d: d.execute_script("return document.readyState") == "complete")`,
			"time.sleep(0.2)",
			"",
		}
	},
	click: func(q quoter, target string) []string {
		return []string{
			fmt.Sprintf("wait.until(EC.element_to_be_clickable((By.CSS_SELECTOR, %s))).click()", q(target)),
			"time.sleep(0.3)",
			"",
		}
	},
	fill: func(q quoter, target, value string) []string {
		return []string{
			fmt.Sprintf("field = wait.until(EC.presence_of_element_located((By.CSS_SELECTOR, %s)))", q(target)),
			"field.clear()",
			fmt.Sprintf("field.send_keys(%s)", q(value)),
			"time.sleep(0.3)",
			"",
		}
	},
	epilogue: []string{
		`print("Done!")`,
		"driver.quit()",
	},
}
