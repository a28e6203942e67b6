package devserver

import "html/template"

// SessionHeader carries the session id on the page response.
const SessionHeader = "X-Canopy-Session"

type pageData struct {
	Session string
	Body    template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>canopy preview</title>
</head>
<body>
<div id="canopy-root">{{.Body}}</div>
<script>
(function() {
    'use strict';

    var root = document.getElementById('canopy-root');
    var proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
    var ws = new WebSocket(proto + '//' + location.host + '/ws?session={{.Session}}');

    function byID(id) {
        return root.querySelector('[data-cid="' + id + '"]');
    }

    function apply(m) {
        var el = byID(m.target);
        if (!el) {
            return;
        }
        switch (m.kind) {
            case 'attr':
                el.setAttribute(m.name, m.value || '');
                break;
            case 'removeAttr':
                el.removeAttribute(m.name);
                break;
            case 'style':
                el.style.setProperty(m.name, m.value || '');
                break;
            case 'prop':
                if (m.name === 'checked' || m.name === 'selected' || m.name === 'indeterminate') {
                    el[m.name] = m.value === 'true';
                } else if (el[m.name] !== m.value) {
                    el[m.name] = m.value;
                }
                break;
        }
    }

    ws.onmessage = function(e) {
        var msg = JSON.parse(e.data);
        if (msg.type === 'error') {
            console.error('[canopy]', msg.error);
            return;
        }
        if (msg.html !== undefined && msg.html !== '') {
            root.innerHTML = msg.html;
            return;
        }
        (msg.mutations || []).forEach(apply);
    };

    ws.onclose = function() {
        console.log('[canopy] session closed; reload to start a new one');
    };

    ['click', 'input', 'change', 'submit'].forEach(function(type) {
        root.addEventListener(type, function(e) {
            var el = e.target.closest('[data-cid]');
            if (!el || ws.readyState !== WebSocket.OPEN) {
                return;
            }
            if (type === 'submit') {
                e.preventDefault();
            }
            var value = el.type === 'checkbox' ? String(el.checked) : el.value;
            ws.send(JSON.stringify({
                type: type,
                target: parseInt(el.getAttribute('data-cid'), 10),
                value: value === undefined ? '' : value
            }));
        });
    });
})();
</script>
</body>
</html>
`))
