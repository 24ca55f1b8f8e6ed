package api

import "net/http"

func (h *CaptureHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1.0"/>
<title>Object Detection</title>
<script src="https://cdn.tailwindcss.com"></script>
<style>
body { font-family: Inter, system-ui, -apple-system, Segoe UI, Roboto, sans-serif; }
.preview-box{width:100%;height:360px;background:#f3f4f6;border:2px dashed #d1d5db;display:flex;align-items:center;justify-content:center;overflow:hidden}
.preview-box img{max-width:100%;max-height:100%;object-fit:contain}
.loader{border:8px solid #f3f3f3;border-top:8px solid #6366f1;border-radius:50%;width:56px;height:56px;animation:spin 1.2s linear infinite}
@keyframes spin{0%{transform:rotate(0)}100%{transform:rotate(360deg)}}
</style>
</head>
<body class="bg-gray-50 text-gray-800">
<div class="container mx-auto p-4 md:p-8 max-w-3xl">
<header class="text-center mb-8">
<h1 class="text-3xl md:text-4xl font-bold text-gray-900">Object Detection</h1>
<p class="text-gray-600 mt-2">Take or pick a photo and see what is in it.</p>
</header>
<main class="bg-white p-6 md:p-8 rounded-2xl shadow-lg">
<div id="preview" class="preview-box rounded-lg mb-6">
<span id="placeholder" class="text-gray-400">No photo yet</span>
<img id="photo" class="hidden" alt="captured photo"/>
</div>
<div class="flex flex-wrap justify-center gap-3 mb-6">
<button id="take" class="px-6 py-3 bg-indigo-600 text-white rounded-lg hover:bg-indigo-700 font-medium shadow-sm">Take Photo</button>
<label class="px-6 py-3 bg-green-600 text-white rounded-lg hover:bg-green-700 font-medium shadow-sm cursor-pointer">
Pick Photo<input id="pick" type="file" accept="image/*" class="hidden"/>
</label>
</div>
<div id="loading" class="hidden flex flex-col items-center mb-6">
<div class="loader"></div>
<p id="loading-title" class="mt-2 text-gray-600">Analyzing</p>
</div>
<pre id="result" class="bg-gray-100 rounded-lg p-4 min-h-[4rem] whitespace-pre-wrap"></pre>
<div id="alert" class="hidden mt-4 p-4 bg-red-50 border border-red-200 text-red-700 rounded-lg"></div>
</main>
</div>
<script>
const photo = document.getElementById('photo');
const placeholder = document.getElementById('placeholder');
const result = document.getElementById('result');
const loading = document.getElementById('loading');
const alertBox = document.getElementById('alert');

function render(state) {
  result.textContent = state.result_text;
  loading.classList.toggle('hidden', !state.loading);
  if (state.placeholder_visible) {
    photo.classList.add('hidden');
    placeholder.classList.remove('hidden');
  } else {
    photo.src = '/state/image?rev=' + state.revision;
    photo.classList.remove('hidden');
    placeholder.classList.add('hidden');
  }
}

function showAlert(body) {
  if (body.error && body.outcome !== 'cancelled') {
    alertBox.textContent = body.error;
    alertBox.classList.remove('hidden');
  } else {
    alertBox.classList.add('hidden');
  }
}

async function submit(url, options) {
  alertBox.classList.add('hidden');
  const res = await fetch(url, Object.assign({method: 'POST'}, options));
  showAlert(await res.json());
}

document.getElementById('take').addEventListener('click', () => submit('/capture'));
document.getElementById('pick').addEventListener('change', (e) => {
  const body = new FormData();
  if (e.target.files.length > 0) body.append('image', e.target.files[0]);
  e.target.value = '';
  submit('/pick', {body});
});

function connect() {
  const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
  ws.onmessage = (e) => render(JSON.parse(e.data));
  ws.onclose = () => setTimeout(connect, 1000);
}
fetch('/state').then(r => r.json()).then(render);
connect();
</script>
</body>
</html>`
