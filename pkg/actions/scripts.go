package actions

// Page-side functions. Each is invoked through browser.Call and returns a
// JSON-serializable value.

// fieldScript resolves a form field by marker selector, then label text,
// then name attribute. The resolved element is tagged with attr=token so
// later calls can address it.
const fieldScript = `(markerSel, label, name, attr, token) => {
	let el = markerSel ? document.querySelector(markerSel) : null;
	let via = el ? "marker" : "";
	if (!el && label) {
		const wanted = label.trim().toLowerCase();
		for (const l of document.querySelectorAll("label")) {
			if ((l.textContent || "").trim().toLowerCase() !== wanted) continue;
			el = l.control || (l.htmlFor ? document.getElementById(l.htmlFor) : null) || l.querySelector("input,select,textarea");
			if (el) {
				via = "label";
				break;
			}
		}
	}
	if (!el && name) {
		el = document.querySelector("[name=\"" + CSS.escape(name) + "\"]");
		via = el ? "name" : "";
	}
	if (!el) return { found: false };
	el.setAttribute(attr, token);
	return {
		found: true,
		via: via,
		tag: el.tagName,
		type: (el.getAttribute("type") || "").toLowerCase(),
		name: el.getAttribute("name") || ""
	};
}`

// submitScript submits the form enclosing the element. The submit is
// deferred so the evaluation returns before the page unloads.
const submitScript = `(sel) => {
	const el = document.querySelector(sel);
	if (!el) throw new Error("No such element on page: " + sel);
	const form = el.closest("form");
	if (!form) throw new Error("Element is not inside a form");
	setTimeout(() => form.submit(), 0);
	return true;
}`

// sectionsScript lists header-like elements with the text of their
// paragraphs.
const sectionsScript = `(headerSel) => {
	return Array.from(document.querySelectorAll(headerSel)).map((h) => ({
		header: h.textContent || "",
		paragraphs: Array.from(h.querySelectorAll("p")).map((p) => p.textContent || "")
	}));
}`

// landmarksScript lists navigation landmarks with their links.
const landmarksScript = `(landmarkSel, maxLinks) => {
	const headingSel = "h1,h2,h3,h4,h5,h6";
	const preceding = (el) => {
		for (let n = el; n; n = n.parentElement) {
			for (let s = n.previousElementSibling; s; s = s.previousElementSibling) {
				if (s.matches(headingSel)) return s;
				const inner = s.querySelectorAll(headingSel);
				if (inner.length) return inner[inner.length - 1];
			}
		}
		return null;
	};
	return Array.from(document.querySelectorAll(landmarkSel)).map((nav) => {
		const own = nav.querySelector(headingSel);
		const before = preceding(nav);
		const links = [];
		for (const a of nav.querySelectorAll("a[href]")) {
			if (links.length >= maxLinks) break;
			links.push({ text: a.textContent || "", href: a.getAttribute("href") || "" });
		}
		return {
			label: nav.getAttribute("aria-label") || (before ? before.textContent || "" : ""),
			heading: own ? own.textContent || "" : "",
			links: links
		};
	});
}`

// codeScript collects code blocks under headers. Lines are the elements
// matching lineSel inside each code element, or its own text without any.
const codeScript = `(headerSel, lineSel) => {
	return Array.from(document.querySelectorAll(headerSel)).map((h) => ({
		title: h.textContent || "",
		descriptions: Array.from(h.querySelectorAll("p")).map((p) => p.textContent || "").filter((t) => t),
		codeblocks: Array.from(h.querySelectorAll("code")).map((code) => {
			const lines = Array.from(code.querySelectorAll(lineSel)).map((l) => l.textContent || "").filter((t) => t);
			return lines.length ? lines.join("\n") : code.textContent || "";
		})
	}));
}`

// searchResultsScript extracts results with one selector set.
const searchResultsScript = `(resultSel, linkSel, titleSel, descSel) => {
	const out = [];
	for (const r of document.querySelectorAll(resultSel)) {
		const a = r.querySelector(linkSel);
		const t = r.querySelector(titleSel);
		const href = a ? a.getAttribute("href") || "" : "";
		const title = t ? (t.textContent || "").trim() : "";
		if (!href || !title) continue;
		const d = descSel ? r.querySelector(descSel) : null;
		out.push({ href: href, title: title, description: d ? (d.textContent || "").trim() : "" });
	}
	return out;
}`

// screenshotTargetScript tags the first element matching sel whose text
// contains content.
const screenshotTargetScript = `(sel, content, attr) => {
	document.querySelectorAll("[" + attr + "]").forEach((e) => e.removeAttribute(attr));
	let list;
	try {
		list = document.querySelectorAll(sel);
	} catch (e) {
		return false;
	}
	const wanted = (content || "").toLowerCase();
	for (const el of list) {
		if (wanted && !(el.textContent || "").toLowerCase().includes(wanted)) continue;
		el.setAttribute(attr, "1");
		return true;
	}
	return false;
}`
