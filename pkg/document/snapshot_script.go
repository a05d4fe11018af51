package document

// snapshotScript copies the body, strips scripts and styles, moves priority
// content to the top and mirrors live form values onto marked nodes. Only
// the copy is changed.
const snapshotScript = `(prioritySelectors, attr) => {
	const clone = document.body ? document.body.cloneNode(true) : document.createElement("body");
	clone.querySelectorAll("script, style").forEach((n) => n.remove());

	for (const selector of prioritySelectors) {
		clone.querySelectorAll(selector).forEach((el) => clone.prepend(el));
	}

	clone.querySelectorAll("[" + attr + "]").forEach((copy) => {
		const live = document.querySelector("[" + attr + '="' + copy.getAttribute(attr) + '"]');
		if (live && typeof live.value === "string" && live.tagName !== "BUTTON") {
			copy.setAttribute("value", live.value);
		}
	});

	return { title: document.title || "", html: clone.outerHTML };
}`
