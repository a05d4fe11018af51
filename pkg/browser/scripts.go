package browser

// selectOptionsScript selects options by label, or by index when labels is
// empty, and returns the selected values. It returns null when the element
// is missing.
const selectOptionsScript = `(selector, labels, index) => {
	const el = document.querySelector(selector);
	if (!el || !el.options) return null;
	const wanted = (labels || []).map((l) => l.trim());
	const picked = [];
	Array.from(el.options).forEach((opt, i) => {
		const hit = wanted.length ? wanted.includes(opt.label.trim()) || wanted.includes(opt.text.trim()) : i === index;
		opt.selected = hit;
		if (hit) picked.push(opt.value);
	});
	el.dispatchEvent(new Event("input", { bubbles: true }));
	el.dispatchEvent(new Event("change", { bubbles: true }));
	return picked;
}`

// setCheckedScript clicks a checkbox or radio when its state differs from
// checked. It returns false when the element is missing.
const setCheckedScript = `(selector, checked) => {
	const el = document.querySelector(selector);
	if (!el) return false;
	if (el.checked !== checked) el.click();
	return true;
}`
