package stealth

// OverrideScript masks the usual automation signals. It is injected into
// every session before any page script executes, so the overrides apply to
// every document the context ever loads.
const OverrideScript = `
// Remove webdriver flag
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });

// Override plugins
Object.defineProperty(navigator, 'plugins', {
    get: () => [1, 2, 3, 4, 5]
});

// Override languages
Object.defineProperty(navigator, 'languages', {
    get: () => ['en-US', 'en']
});

// Override visibility state
Object.defineProperty(document, 'visibilityState', { get: () => 'visible' });
Object.defineProperty(document, 'hidden', { get: () => false });

// Override platform
Object.defineProperty(navigator, 'platform', {
    get: () => 'Win32'
});

// Override hardware concurrency
Object.defineProperty(navigator, 'hardwareConcurrency', {
    get: () => 8
});

// Override device memory
Object.defineProperty(navigator, 'deviceMemory', {
    get: () => 8
});

// Remove automation indicators from chrome object
if (window.chrome) {
    window.chrome.runtime = {};
}

// Override permissions query
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
    parameters.name === 'notifications' ?
        Promise.resolve({ state: Notification.permission }) :
        originalQuery(parameters)
);
`
