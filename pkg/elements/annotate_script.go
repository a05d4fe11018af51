package elements

// annotateScript runs the whole scan inside the page. It clears markers of
// an earlier scan, walks candidates in document order up to limit, and
// returns a Scan as JSON. Failures on one candidate are reported in errors.
const annotateScript = `(selector, limit, prefix, attr) => {
	for (const old of document.querySelectorAll("[" + attr + "]")) {
		old.removeAttribute(attr);
		for (const cls of Array.from(old.classList)) {
			if (cls.startsWith(prefix)) old.classList.remove(cls);
		}
	}

	const nodes = Array.from(document.querySelectorAll(selector));
	const result = {
		candidates: nodes.length,
		skipped: Math.max(0, nodes.length - limit),
		elements: [],
		errors: [],
	};

	const clean = (s) => (s || "").replace(/\s+/g, " ").trim();
	const visible = (el) => {
		const style = getComputedStyle(el);
		const rect = el.getBoundingClientRect();
		return (
			style.visibility !== "hidden" &&
			style.display !== "none" &&
			rect.width !== 0 &&
			rect.height !== 0 &&
			style.clip !== "rect(1px, 1px, 1px, 1px)" &&
			style.clip !== "rect(0px, 0px, 0px, 0px)"
		);
	};

	let id = 0;
	for (const el of nodes) {
		if (id >= limit) break;
		id++;
		try {
			if (el.tagName === "BODY") continue;
			const text = clean(el.textContent);
			if (text === "" && !el.matches("select, input, textarea")) continue;
			if (!visible(el)) continue;

			el.classList.add(prefix + id);
			el.setAttribute(attr, String(id));
			if (typeof el.value === "string" && el.tagName !== "BUTTON") {
				el.setAttribute("value", el.value);
			}

			result.elements.push({
				id: id,
				tag: el.tagName.toLowerCase(),
				role: el.getAttribute("role") || "",
				type: typeof el.type === "string" ? el.type : "",
				value: typeof el.value === "string" ? el.value : "",
				href: typeof el.href === "string" ? el.href : "",
				placeholder: el.getAttribute("placeholder") || "",
				title: el.getAttribute("title") || "",
				text: text,
				visible: true,
			});
		} catch (e) {
			result.errors.push({ id: id, error: String(e) });
		}
	}
	return result;
}`
